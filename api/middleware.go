package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// maxInflatedBody caps how far a compressed request may expand, so a tiny
// gzip bomb cannot balloon into an unbounded allocation downstream.
const maxInflatedBody = 4 << 20

// GzipRequestMiddleware lets clients ship large typeData payloads
// compressed. Bodies tagged Content-Encoding: gzip are inflated before the
// handlers decode them, with the inflated stream capped at maxInflatedBody;
// payloads that are not actually gzip get a 400.
func GzipRequestMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !requestIsGzipped(req) {
				return next(c)
			}

			inflated, err := inflate(req.Body)
			if err != nil {
				_ = req.Body.Close()
				return echo.NewHTTPError(http.StatusBadRequest, "invalid gzip body")
			}

			req.Body = inflated
			req.ContentLength = -1
			req.Header.Del(echo.HeaderContentEncoding)
			req.Header.Del(echo.HeaderContentLength)

			return next(c)
		}
	}
}

func requestIsGzipped(req *http.Request) bool {
	for _, enc := range strings.Split(req.Header.Get(echo.HeaderContentEncoding), ",") {
		if strings.EqualFold(strings.TrimSpace(enc), "gzip") {
			return true
		}
	}
	return false
}

// inflatedBody streams the decompressed request, keeping the gzip reader and
// the underlying network body around so both get closed.
type inflatedBody struct {
	capped io.Reader
	gz     *gzip.Reader
	raw    io.ReadCloser
}

func inflate(raw io.ReadCloser) (*inflatedBody, error) {
	gz, err := gzip.NewReader(raw)
	if err != nil {
		return nil, err
	}
	return &inflatedBody{
		capped: io.LimitReader(gz, maxInflatedBody),
		gz:     gz,
		raw:    raw,
	}, nil
}

func (b *inflatedBody) Read(p []byte) (int, error) {
	return b.capped.Read(p)
}

func (b *inflatedBody) Close() error {
	gzErr := b.gz.Close()
	rawErr := b.raw.Close()
	if gzErr != nil {
		return gzErr
	}
	return rawErr
}
