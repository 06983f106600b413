package bridge

import "strings"

const placeholder = "{{ROOT}}"

// page wraps the rendered root in a document that keeps it live.
func page(root string) string {
	return strings.Replace(pageTemplate, placeholder, root, 1)
}

// ClientScript forwards events to the bridge and swaps in pushed renders.
// Events are addressed by child element indexes from the render root.
const ClientScript = `
<script>
(function() {
    'use strict';

    var root = document.body.firstElementChild;
    var ws = null;
    var events = ['click', 'input', 'change', 'submit'];

    function pathOf(el) {
        var path = [];
        while (el && el !== root) {
            var idx = 0;
            for (var s = el.previousElementSibling; s; s = s.previousElementSibling) {
                idx++;
            }
            path.unshift(idx);
            el = el.parentElement;
        }
        return el === root ? path : null;
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.error) {
                console.warn('[isodom]', msg.error);
                return;
            }
            if (msg.html) {
                var next = document.createElement('template');
                next.innerHTML = msg.html;
                var el = next.content.firstElementChild;
                root.replaceWith(el);
                root = el;
            }
        };

        ws.onclose = function() {
            setTimeout(connect, 1000);
        };
    }

    events.forEach(function(type) {
        document.addEventListener(type, function(e) {
            var path = pathOf(e.target);
            if (!path || !ws || ws.readyState !== WebSocket.OPEN) {
                return;
            }
            if (type === 'submit') {
                e.preventDefault();
            }
            var detail = {};
            if (e.target.value !== undefined) {
                detail.value = e.target.value;
            }
            ws.send(JSON.stringify({type: type, path: path, detail: detail}));
        }, true);
    });

    connect();
})();
</script>
`

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>isodom</title>
</head>
<body>` + placeholder + ClientScript + `</body>
</html>
`
