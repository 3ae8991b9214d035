package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/seamui/seam/internal/assets"
	"github.com/seamui/seam/internal/manifest"
	"github.com/seamui/seam/internal/payload"
)

// ClientEntryPath is where the browser loads the hydration entry from.
const ClientEntryPath = "/client/entry.mjs"

// voidElements are intrinsic tags with no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// RenderHTML runs the second phase: consume the payload rows from rsc and
// write a progressively delivered HTML document to w. The shell goes out on
// the tree row; each boundary row becomes a template plus the re-encoded
// payload frame the client hydrates from.
func (r *Renderer) RenderHTML(ctx context.Context, sess *Session, rsc io.Reader, w io.Writer) error {
	dec := payload.NewDecoder(rsc)
	pass := &htmlPass{renderer: r, sess: sess, w: w, manifests: r.Manifests()}

	for {
		if err := ctx.Err(); err != nil {
			sess.Abort()
			return &StreamAbortError{SessionID: sess.ID, Err: err}
		}

		row, err := dec.ReadRow()
		if err == io.EOF {
			sess.Abort()
			return &StreamAbortError{SessionID: sess.ID, Err: io.ErrUnexpectedEOF}
		}
		if err != nil {
			sess.Abort()
			return err
		}

		switch row.Kind {
		case payload.RowTree:
			err = pass.shell(ctx, row)
		case payload.RowBoundary:
			err = pass.boundary(ctx, row)
		case payload.RowError:
			err = pass.boundaryError(row)
		case payload.RowDone:
			if err := pass.finish(row); err != nil {
				return err
			}
			return sess.Transition(StateComplete)
		default:
			err = fmt.Errorf("render: unexpected row kind %q", row.Kind)
		}
		if err != nil {
			sess.Abort()
			return err
		}
	}
}

// RenderPage runs both phases pipelined: the RSC encoder feeds the HTML
// decoder through a pipe, so shell bytes reach w before any suspended
// boundary has resolved.
func (r *Renderer) RenderPage(ctx context.Context, sess *Session, route string, props Props, w io.Writer) error {
	pr, pw := io.Pipe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := r.RenderRSC(gctx, sess, route, props, pw)
		if err != nil {
			pw.CloseWithError(err)
			return err
		}
		return pw.Close()
	})
	g.Go(func() error {
		defer pr.Close()
		return r.RenderHTML(gctx, sess, pr, w)
	})

	if err := g.Wait(); err != nil {
		sess.Abort()
		return err
	}
	return nil
}

// htmlPass carries the document-phase state: the payload re-encoder and the
// count of chunk script tags already emitted.
type htmlPass struct {
	renderer  *Renderer
	sess      *Session
	w         io.Writer
	manifests *manifest.Set

	frames        bytes.Buffer
	enc           *payload.Encoder
	emittedChunks int
}

// chunkSignal is the JSON shape of __SEAM_CHUNKS__: the chunks the client
// should preload even though first paint does not need them.
type chunkSignal struct {
	JS  []string `json:"js"`
	CSS []string `json:"css"`
}

func marshalChunkSignal(a assets.Assets) ([]byte, error) {
	sig := chunkSignal{JS: a.JS, CSS: a.CSS}
	if sig.JS == nil {
		sig.JS = []string{}
	}
	if sig.CSS == nil {
		sig.CSS = []string{}
	}
	return json.Marshal(sig)
}

// shell writes the document head and the static shell with suspense
// fallbacks in place. The head carries the static asset partition only;
// __SEAM_CHUNKS__ starts empty and is filled in once every boundary has
// resolved and the dynamic partition is known.
func (p *htmlPass) shell(ctx context.Context, row *payload.Row) error {
	if err := p.sess.Transition(StateResolvingHTML); err != nil {
		return err
	}

	static := p.sess.Extractor.SplitForPPR().Static
	placeholder, err := marshalChunkSignal(assets.Assets{})
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	for _, tag := range static.LinkTags() {
		b.WriteString(tag)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "<script>self.__SEAM_PAYLOAD__=[];self.__SEAM_CHUNKS__=%s;</script>\n", placeholder)
	fmt.Fprintf(&b, "<script type=\"module\" src=%q></script>\n", ClientEntryPath)
	b.WriteString("</head>\n<body>\n<div id=\"root\">")
	b.WriteString(p.nodeHTML(ctx, row.Node))
	b.WriteString("</div>\n")
	p.emittedChunks = len(static.JS) + len(static.CSS)

	if err := p.pushFrame(row, &b); err != nil {
		return err
	}
	_, err = io.WriteString(p.w, b.String())
	return err
}

// boundary writes one resolved boundary as an inert template the client
// grafts into its placeholder, plus script tags for any chunks the boundary
// content introduced.
func (p *htmlPass) boundary(ctx context.Context, row *payload.Row) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<template data-seam-boundary=%q>%s</template>\n",
		row.Boundary, p.nodeHTML(ctx, row.Node))
	p.newChunkTags(&b)
	if err := p.pushFrame(row, &b); err != nil {
		return err
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// boundaryError marks a failed boundary so the client can swap the fallback
// for an error state instead of waiting forever.
func (p *htmlPass) boundaryError(row *payload.Row) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<template data-seam-boundary=%q data-seam-error=%q></template>\n",
		row.Boundary, html.EscapeString(row.Message))
	if err := p.pushFrame(row, &b); err != nil {
		return err
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// finish updates the preload signal with the dynamic asset partition, now
// that every boundary has resolved, and closes the document.
func (p *htmlPass) finish(row *payload.Row) error {
	dynamic, err := marshalChunkSignal(p.sess.Extractor.SplitForPPR().Dynamic)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<script>self.__SEAM_CHUNKS__=%s;</script>\n", dynamic)
	if err := p.pushFrame(row, &b); err != nil {
		return err
	}
	b.WriteString("</body>\n</html>\n")
	_, werr := io.WriteString(p.w, b.String())
	return werr
}

// pushFrame re-encodes one payload row and appends it to the inline
// hydration stream the client consumes.
func (p *htmlPass) pushFrame(row *payload.Row, b *strings.Builder) error {
	if p.enc == nil {
		p.enc = payload.NewEncoder(&p.frames)
	}
	p.frames.Reset()
	if err := p.enc.WriteRow(*row); err != nil {
		return err
	}
	fmt.Fprintf(b, "<script>self.__SEAM_PAYLOAD__.push(%q);</script>\n",
		base64.StdEncoding.EncodeToString(p.frames.Bytes()))
	return nil
}

// newChunkTags emits module script tags for chunks touched since the last
// emission. Boundary content can pull in client components the shell never
// referenced.
func (p *htmlPass) newChunkTags(b *strings.Builder) {
	chunks := p.sess.Extractor.GetChunks()
	for _, chunk := range chunks[p.emittedChunks:] {
		if strings.HasSuffix(chunk, ".css") {
			fmt.Fprintf(b, "<link rel=\"stylesheet\" href=\"/chunks/%s\">\n", chunk)
		} else {
			fmt.Fprintf(b, "<script type=\"module\" src=\"/chunks/%s\"></script>\n", chunk)
		}
	}
	p.emittedChunks = len(chunks)
}

// nodeHTML serializes a tree node to markup. Text is escaped; client
// references become mount points, server-side rendered when a renderer is
// registered for the module; suspense boundaries render their fallback
// inside an addressable wrapper.
func (p *htmlPass) nodeHTML(ctx context.Context, n *payload.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case payload.KindText:
		return html.EscapeString(n.Text)

	case payload.KindElement:
		var b strings.Builder
		b.WriteString("<")
		b.WriteString(n.Tag)
		b.WriteString(attrString(n.Props))
		if voidElements[n.Tag] {
			b.WriteString(">")
			return b.String()
		}
		b.WriteString(">")
		for _, child := range n.Children {
			b.WriteString(p.nodeHTML(ctx, child))
		}
		fmt.Fprintf(&b, "</%s>", n.Tag)
		return b.String()

	case payload.KindClientRef:
		return p.clientRefHTML(ctx, n)

	case payload.KindSuspense:
		return fmt.Sprintf(`<div data-seam-boundary-slot=%q>%s</div>`,
			n.Boundary, p.nodeHTML(ctx, n.Fallback))

	default:
		return ""
	}
}

// clientRefHTML writes a client component's mount point. The first phase
// stamped the reference id with the component's chunk; the SSR manifest
// recovers the module specifier, the inverse of that stamping.
func (p *htmlPass) clientRefHTML(ctx context.Context, n *payload.Node) string {
	moduleID := n.Ref.ID
	if spec, ok := p.manifests.Specifier(n.Ref.ID); ok {
		moduleID = spec
	}

	var inner string
	if fn, ok := p.renderer.ssr.Lookup(moduleID); ok {
		node, err := fn(ctx, Props(n.Ref.Props))
		if err != nil {
			p.renderer.log.WithRequest(p.sess.ID).Warnw("SSR renderer failed",
				"module", moduleID, "error", err)
		} else {
			inner = p.nodeHTML(ctx, node)
		}
	}
	return fmt.Sprintf(`<div data-seam-ref=%q>%s</div>`, html.EscapeString(moduleID), inner)
}

// attrString serializes element props as attributes in sorted key order.
// Non-scalar values are dropped; they have no attribute form.
func attrString(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		switch v := props[k].(type) {
		case string:
			fmt.Fprintf(&b, " %s=%q", k, html.EscapeString(v))
		case bool:
			if v {
				fmt.Fprintf(&b, " %s", k)
			}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			fmt.Fprintf(&b, " %s=\"%v\"", k, v)
		}
	}
	return b.String()
}
