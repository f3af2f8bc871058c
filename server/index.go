package server

import (
	"fmt"
	"net/http"
)

// handleIndex serves a minimal canvas viewer for the WebSocket feed
func handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Community Graph</title>
  <style>
    html, body { margin: 0; height: 100%; overflow: hidden; background: #f8f8f8; font-family: sans-serif; }
    canvas { display: block; width: 100%; height: 100%; cursor: grab; }
    #status { position: fixed; top: 8px; left: 12px; color: #808080; font-size: 12px; }
  </style>
</head>
<body>
  <div id="status">connecting...</div>
  <canvas id="graph"></canvas>
  <script>
  const canvas = document.getElementById('graph');
  const ctx = canvas.getContext('2d');
  const status = document.getElementById('status');
  let nodes = [], edges = [], positions = {};
  let dragging = null;

  function resize() {
    canvas.width = canvas.clientWidth * devicePixelRatio;
    canvas.height = canvas.clientHeight * devicePixelRatio;
  }
  window.addEventListener('resize', resize);
  resize();

  // origin-centered camera
  function toScreen(p) {
    return { x: p.x * devicePixelRatio + canvas.width / 2, y: p.y * devicePixelRatio + canvas.height / 2 };
  }
  function toWorld(e) {
    const r = canvas.getBoundingClientRect();
    return { x: e.clientX - r.left - r.width / 2, y: e.clientY - r.top - r.height / 2 };
  }

  function draw() {
    ctx.clearRect(0, 0, canvas.width, canvas.height);
    for (const e of edges) {
      const a = positions[e.source], b = positions[e.target];
      if (!a || !b) continue;
      const sa = toScreen(a), sb = toScreen(b);
      ctx.strokeStyle = e.color || '#999999';
      ctx.globalAlpha = e.isMain ? 0.8 : 0.4;
      ctx.lineWidth = (e.isMain ? 2 : 1) * devicePixelRatio;
      ctx.beginPath(); ctx.moveTo(sa.x, sa.y); ctx.lineTo(sb.x, sb.y); ctx.stroke();
    }
    ctx.globalAlpha = 1;
    for (const n of nodes) {
      const p = positions[n.id];
      if (!p) continue;
      const s = toScreen(p);
      ctx.fillStyle = n.color || '#666666';
      ctx.beginPath(); ctx.arc(s.x, s.y, n.size * devicePixelRatio, 0, 2 * Math.PI); ctx.fill();
      if (n.kind === 'category') {
        ctx.fillStyle = '#333333';
        ctx.font = (11 * devicePixelRatio) + 'px sans-serif';
        ctx.textAlign = 'center';
        ctx.fillText(n.label, s.x, s.y + (n.size + 14) * devicePixelRatio);
      }
    }
  }

  function nodeAt(p) {
    for (let i = nodes.length - 1; i >= 0; i--) {
      const q = positions[nodes[i].id];
      if (q && Math.hypot(p.x - q.x, p.y - q.y) <= nodes[i].size) return nodes[i].id;
    }
    return null;
  }

  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + '/ws');
  ws.onopen = () => { status.textContent = 'live'; };
  ws.onclose = () => { status.textContent = 'disconnected'; };
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type === 'graph') {
      nodes = msg.graph.nodes || [];
      edges = msg.graph.edges || [];
    } else if (msg.type === 'positions') {
      positions = msg.positions || {};
      requestAnimationFrame(draw);
    } else if (msg.type === 'error') {
      console.warn(msg.id, msg.error);
    }
  };

  function send(type, id, p) {
    if (ws.readyState !== WebSocket.OPEN) return;
    const msg = { type: type, id: id };
    if (p) { msg.x = p.x; msg.y = p.y; }
    ws.send(JSON.stringify(msg));
  }

  canvas.addEventListener('mousedown', (e) => {
    const p = toWorld(e);
    dragging = nodeAt(p);
    if (dragging) { send('pin', dragging, p); canvas.style.cursor = 'grabbing'; }
  });
  canvas.addEventListener('mousemove', (e) => {
    if (dragging) send('move', dragging, toWorld(e));
  });
  window.addEventListener('mouseup', () => {
    if (dragging) send('unpin', dragging);
    dragging = null;
    canvas.style.cursor = 'grab';
  });
  </script>
</body>
</html>
`
