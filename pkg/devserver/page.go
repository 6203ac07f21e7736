package devserver

import "html/template"

type pageData struct {
	Title string
	Body  template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="root">{{.Body}}</div>
<script>` + clientScript + `</script>
</body>
</html>
`))

// clientScript applies patch frames and forwards events of elements
// marked with data-on-<event>.
const clientScript = `
(function() {
    'use strict';

    var ws = null;
    var reconnectDelay = 1000;

    function byHID(hid) {
        return document.querySelector('[data-hid="' + hid + '"]');
    }

    function fromHTML(html) {
        var t = document.createElement('template');
        t.innerHTML = html;
        return t.content;
    }

    function apply(p) {
        var el = p.hid ? byHID(p.hid) : null;
        switch (p.op) {
            case 'SetText':
                if (el) el.textContent = p.value || '';
                break;
            case 'SetAttr':
                if (el) el.setAttribute(p.key, p.value || '');
                break;
            case 'RemoveAttr':
                if (el) el.removeAttribute(p.key);
                break;
            case 'RemoveNode':
                if (el) el.remove();
                break;
            case 'ReplaceNode':
                if (el) el.replaceWith(fromHTML(p.html || ''));
                break;
            case 'InsertNode':
            case 'MoveNode':
                var parent = p.parent ? byHID(p.parent) : document.getElementById('root');
                if (!parent) break;
                var node = p.op === 'MoveNode' ? el : fromHTML(p.html || '');
                if (!node) break;
                parent.insertBefore(node, parent.children[p.index || 0] || null);
                break;
        }
    }

    function send(e) {
        var target = e.target.closest('[data-on-' + e.type + ']');
        if (!target || !ws || ws.readyState !== 1) return;
        if (e.type === 'submit') e.preventDefault();
        ws.send(JSON.stringify({
            type: 'event',
            hid: target.getAttribute('data-hid'),
            event: e.type,
            value: target.value !== undefined ? String(target.value) : ''
        }));
    }

    ['click', 'input', 'change', 'submit'].forEach(function(type) {
        document.addEventListener(type, send, true);
    });

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var frame;
            try {
                frame = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (frame.type === 'patches') {
                (frame.patches || []).forEach(apply);
            } else if (frame.type === 'error') {
                console.error('[autotrack]', frame.code, frame.error);
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, 30000);
                connect();
            }, reconnectDelay);
        };
    }

    connect();
})();
`
