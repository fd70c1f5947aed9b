package cli

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/branchdeck/pkg/buildinfo"
	"github.com/matzehuels/branchdeck/pkg/config"
	"github.com/matzehuels/branchdeck/pkg/deck"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/export"
	"github.com/matzehuels/branchdeck/pkg/observability"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// shutdownTimeout bounds how long in-flight requests may finish after
// interrupt.
const shutdownTimeout = 5 * time.Second

type serveOpts struct {
	addr     string
	capturer string
	scale    float64
	notes    bool
}

// serveCommand creates the preview server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [deck]",
		Short: "Preview a deck in the browser",
		Long: `Serve a deck over HTTP.

Routes:
  /                  redirects to the first page
  /pages/{n}         HTML page with the diagram, notes and prev/next links
  /pages/{n}.svg     the diagram as SVG
  /pages/{n}.png     the diagram captured as PNG
  /pages/{n}.json    the placed geometry as JSON
  /pages/{n}.dot     the diagram as Graphviz DOT
  /healthz           liveness probe

Page numbers are 0-based and clamp to the deck.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.capturer, "capturer", "", "png capturer: raster (default), rsvg, graphviz")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "png scale factor (default 2)")
	cmd.Flags().BoolVar(&opts.notes, "notes", false, "draw snapshot notes into the images")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, sopts serveOpts) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Capturer:    sopts.capturer,
		Scale:       sopts.scale,
		Notes:       sopts.notes,
		Interactive: true,
	}
	c.applyConfig(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	capturer, err := pipeline.NewCapturer(opts.Capturer, opts.Scale)
	if err != nil {
		return err
	}

	addr := sopts.addr
	if addr == "" {
		addr = c.config().Addr()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newPreviewServer(d, opts, export.New(capturer, export.WithLogger(c.Logger)), c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	printSuccess("Serving %s (%d pages)", input, d.Len())
	printKeyValue("URL", StyleLink.Render("http://"+addr+"/"))
	printInfo("Press Ctrl+C to stop")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// previewServer - HTTP handlers
// =============================================================================

// previewServer renders pages on request. Pages are composed per request;
// PNG capture goes through one shared bridge, so concurrent PNG requests
// get 503 while a capture is in flight.
type previewServer struct {
	deck   *deck.Deck
	opts   pipeline.Options
	bridge *export.Bridge
	logger *log.Logger
}

func newPreviewServer(d *deck.Deck, opts pipeline.Options, bridge *export.Bridge, logger *log.Logger) *previewServer {
	return &previewServer{deck: d, opts: opts, bridge: bridge, logger: logger}
}

func (s *previewServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/pages/0", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/pages/{page}", s.handlePage)

	return r
}

// logRequests logs each request with the charm logger and reports it to
// the HTTP hooks.
func (s *previewServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.Product())
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur,
			"request_id", middleware.GetReqID(ctx))
	})
}

// handlePage serves /pages/{n} and its .svg, .png, .json and .dot forms.
// Out-of-range numbers redirect to the clamped page.
func (s *previewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "page")
	ext := path.Ext(raw)
	n, err := strconv.Atoi(strings.TrimSuffix(raw, ext))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	idx := deck.Clamp(n, s.deck.Len())
	if idx != n {
		http.Redirect(w, r, "/pages/"+strconv.Itoa(idx)+ext, http.StatusFound)
		return
	}

	snap := s.deck.Snapshots[idx]
	sc, composeErr := pipeline.Compose(r.Context(), idx, snap, s.opts)
	surface := pipeline.Surface(sc, s.opts)

	switch ext {
	case "":
		s.writeHTML(w, idx, surface, composeErr)
		return
	case ".svg", ".json", ".dot", ".png":
	default:
		http.NotFound(w, r)
		return
	}
	if composeErr != nil {
		writeError(w, http.StatusUnprocessableEntity, composeErr)
		return
	}

	switch ext {
	case ".svg":
		write(w, "image/svg+xml", sink.RenderSVG(surface, s.opts.SVGOptions()...))
	case ".json":
		data, err := sink.RenderJSON(surface)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		write(w, "application/json", data)
	case ".dot":
		write(w, "text/vnd.graphviz; charset=utf-8", []byte(sink.ToDOT(surface)))
	case ".png":
		s.writePNG(w, r, surface)
	}
}

// writePNG captures through the shared bridge. A capture already in flight
// answers 503 with Retry-After.
func (s *previewServer) writePNG(w http.ResponseWriter, r *http.Request, surface *sink.Surface) {
	res, err := s.bridge.Capture(r.Context(), surface)
	switch {
	case errors.Is(err, export.ErrCaptureInFlight):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		write(w, "image/"+res.Format, res.Data)
	}
}

func write(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	http.Error(w, errs.UserMessage(err), status)
}

// =============================================================================
// HTML page
// =============================================================================

type pageView struct {
	DeckTitle string
	Title     string
	Page      int // zero-based, used in links
	Number    int // one-based, shown to readers
	Pages     int
	Prev      int
	Next      int
	AtStart   bool
	AtEnd     bool
	SVG       template.HTML
	Notes     []string
	Error     string
}

func (s *previewServer) writeHTML(w http.ResponseWriter, idx int, surface *sink.Surface, composeErr error) {
	snap := s.deck.Snapshots[idx]
	n := s.deck.Len()
	v := pageView{
		DeckTitle: s.deck.Title,
		Title:     snap.Title,
		Page:      idx,
		Number:    idx + 1,
		Pages:     n,
		Prev:      deck.Clamp(idx-1, n),
		Next:      deck.Clamp(idx+1, n),
		AtStart:   idx == 0,
		AtEnd:     idx == n-1,
		Notes:     snap.Annotation.Notes,
	}
	status := http.StatusOK
	if composeErr != nil {
		v.Error = errs.UserMessage(composeErr)
		status = http.StatusUnprocessableEntity
	} else {
		// The SVG is generated here with every text node escaped.
		v.SVG = template.HTML(sink.RenderSVG(surface, s.opts.SVGOptions()...))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, v); err != nil {
		s.logger.Error("render page template", "err", err)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}} · {{end}}{{or .DeckTitle "branchdeck"}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
  nav { display: flex; gap: 1rem; align-items: baseline; margin-bottom: 1rem; }
  nav .disabled { color: #aaa; }
  .error { color: #b00; font-family: monospace; white-space: pre-wrap; }
  .notes { color: #555; }
  .formats a { margin-right: .75rem; font-size: .9rem; }
</style>
</head>
<body>
<h1>{{or .DeckTitle "branchdeck"}}</h1>
<nav>
  {{if .AtStart}}<span class="disabled">&larr; Previous</span>{{else}}<a href="/pages/{{.Prev}}" rel="prev">&larr; Previous</a>{{end}}
  <span>Page {{.Number}} of {{.Pages}}</span>
  {{if .AtEnd}}<span class="disabled">Next &rarr;</span>{{else}}<a href="/pages/{{.Next}}" rel="next">Next &rarr;</a>{{end}}
</nav>
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}<figure>{{.SVG}}</figure>{{end}}
{{if .Notes}}<ul class="notes">{{range .Notes}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p class="formats">
  <a href="/pages/{{.Page}}.svg">SVG</a>
  <a href="/pages/{{.Page}}.png" download="page-{{.Number}}.png">Save As Image</a>
  <a href="/pages/{{.Page}}.json">JSON</a>
  <a href="/pages/{{.Page}}.dot">DOT</a>
</p>
</body>
</html>
`))
