package builder

import (
	"bytes"
	"fmt"
	"text/template"
)

// The launcher adapts the framework's request handler to the platform's
// invocation contract. Every unit ships launcher.js + bridge.js; the
// platform invokes launcher.launcher.
const (
	launcherFile    = "launcher.js"
	bridgeFile      = "bridge.js"
	pageFile        = "page.js"
	launcherHandler = "launcher.launcher"
)

// serverlessLauncherSource wraps a self-contained compiled page bundle.
const serverlessLauncherSource = `process.env.NODE_ENV = 'production';
const { Server } = require('http');
const { Bridge } = require('./bridge');
const page = require('./page');

const server = new Server((req, res) => page.render(req, res));
const bridge = new Bridge(server);
bridge.listen();

exports.launcher = bridge.launcher;
`

// legacyLauncherTemplate boots the full next server and renders one fixed
// route. Each page gets its own copy with the route path baked in at
// packaging time.
var legacyLauncherTemplate = template.Must(template.New("launcher").Parse(`process.env.NODE_ENV = 'production';
const next = require('next');
const { Server } = require('http');
const { Bridge } = require('./bridge');

const app = next({ dev: false, dir: __dirname });
const handler = app.getRequestHandler();

const server = new Server(async (req, res) => {
  try {
    await app.prepare();
    await app.render(req, res, {{printf "%q" .RoutePath}});
  } catch (err) {
    console.error(err);
    res.statusCode = 500;
    res.end('internal server error');
  }
});
const bridge = new Bridge(server);
bridge.listen();

exports.launcher = bridge.launcher;
`))

type launcherParams struct {
	RoutePath string
}

// renderLegacyLauncher materializes the legacy launcher for one page.
func renderLegacyLauncher(routePath string) ([]byte, error) {
	var buf bytes.Buffer
	if err := legacyLauncherTemplate.Execute(&buf, launcherParams{RoutePath: routePath}); err != nil {
		return nil, fmt.Errorf("failed to render launcher for %s: %w", routePath, err)
	}
	return buf.Bytes(), nil
}

// bridgeSource adapts a Node http server to the platform's event-based
// invocation: the server listens on an ephemeral local port and each
// invocation is replayed against it as a real HTTP request.
const bridgeSource = `const { request } = require('http');

class Bridge {
  constructor(server) {
    this.server = server;
    this.launcher = this.launcher.bind(this);
    this.listening = new Promise((resolve) => {
      this.resolveListening = resolve;
    });
  }

  listen() {
    this.server.listen({ host: '127.0.0.1', port: 0 }, () => {
      this.resolveListening(this.server.address().port);
    });
  }

  async launcher(event) {
    const port = await this.listening;
    const { method, path, headers, body } = JSON.parse(
      Buffer.from(event.body, 'base64').toString('utf8')
    );

    return new Promise((resolve, reject) => {
      const req = request(
        { hostname: '127.0.0.1', port, method, path, headers },
        (res) => {
          const chunks = [];
          res.on('data', (chunk) => chunks.push(chunk));
          res.on('end', () => {
            resolve({
              statusCode: res.statusCode,
              headers: res.headers,
              body: Buffer.concat(chunks).toString('base64'),
              encoding: 'base64',
            });
          });
        }
      );
      req.on('error', reject);
      if (body) req.write(Buffer.from(body, 'base64'));
      req.end();
    });
  }
}

module.exports = { Bridge };
`
