// Package render turns VNode trees into HTML.
//
// Text and attribute values are escaped. Elements that carry an HID get a
// data-hid attribute, and elements with event handlers get data-on-*
// markers so a client can route events back by HID. Component and
// fragment nodes render their children without a wrapper.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(tree)
package render
