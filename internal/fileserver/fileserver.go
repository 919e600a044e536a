package fileserver

import (
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/angeloszaimis/pathrouter/pkg/router"
)

const indexFile = "index.html"

// Leaf serves files below a root directory.
type Leaf struct {
	root   *os.Root
	fsys   fs.FS
	logger *slog.Logger
}

// New opens dir as the root. Paths can never escape it.
func New(dir string, logger *slog.Logger) (*Leaf, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open filesystem root: %w", err)
	}

	return &Leaf{root: root, fsys: root.FS(), logger: logger}, nil
}

// Close releases the root directory.
func (l *Leaf) Close() error {
	return l.root.Close()
}

// Handle serves GET and HEAD. Directories serve their index.html or, if
// there is none, a listing; a directory requested without a trailing slash
// is first redirected to the slashed path so relative links resolve inside
// it. Missing files and paths leaving the root, including through
// symlinks, are 404.
func (l *Leaf) Handle(ex router.Exchange, p string) {
	if ex.Method() != http.MethodGet && ex.Method() != http.MethodHead {
		ex.ResponseWriter().Header().Set("Allow", "GET, HEAD")
		ex.WriteError(http.StatusMethodNotAllowed)
		return
	}

	name, ok := clean(p)
	if !ok {
		ex.WriteError(http.StatusNotFound)
		return
	}

	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		l.fail(ex, name, err)
		return
	}

	if info.IsDir() {
		if reqPath := ex.Request().URL.Path; !strings.HasSuffix(reqPath, "/") {
			redirectDir(ex, reqPath)
			return
		}

		index := path.Join(name, indexFile)
		if ii, err := fs.Stat(l.fsys, index); err == nil && !ii.IsDir() {
			l.serveFile(ex, index)
			return
		}

		l.serveListing(ex, name)
		return
	}

	l.serveFile(ex, name)
}

// clean turns the routed remainder into an fs.FS name.
func clean(p string) (string, bool) {
	name := strings.Trim(path.Clean("/"+p), "/")
	if name == "" {
		name = "."
	}

	return name, fs.ValidPath(name)
}

func redirectDir(ex router.Exchange, reqPath string) {
	target := reqPath + "/"
	if q := ex.Request().URL.RawQuery; q != "" {
		target += "?" + q
	}

	http.Redirect(ex.ResponseWriter(), ex.Request(), target, http.StatusMovedPermanently)
}

func (l *Leaf) serveFile(ex router.Exchange, name string) {
	f, err := l.fsys.Open(name)
	if err != nil {
		l.fail(ex, name, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		l.fail(ex, name, err)
		return
	}

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		ex.WriteError(http.StatusInternalServerError)
		return
	}

	http.ServeContent(ex.ResponseWriter(), ex.Request(), info.Name(), info.ModTime(), rs)
}

func (l *Leaf) serveListing(ex router.Exchange, name string) {
	entries, err := fs.ReadDir(l.fsys, name)
	if err != nil {
		l.fail(ex, name, err)
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body><ul>\n")
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() {
			n += "/"
		}
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", (&url.URL{Path: n}).String(), html.EscapeString(n))
	}
	b.WriteString("</ul></body></html>\n")

	w := ex.ResponseWriter()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if ex.Method() != http.MethodHead {
		w.Write([]byte(b.String()))
	}
}

func (l *Leaf) fail(ex router.Exchange, name string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist), escapesRoot(err):
		ex.WriteError(http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		ex.WriteError(http.StatusForbidden)
	default:
		l.logger.Error("Failed to serve file", slog.String("name", name), slog.Any("err", err))
		ex.WriteError(http.StatusInternalServerError)
	}
}

// os.Root reports a symlink or ".." leading outside the root with an
// unexported error, so it is recognised by its message.
const escapeMessage = "path escapes from parent"

func escapesRoot(err error) bool {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return err != nil && err.Error() == escapeMessage
}
