package scraper

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"

	errs "scrapekit/pkg/errors"
	"scrapekit/pkg/logger"
)

// FTPTransport is the transfer capability consumed by the FTP adapter:
// given a parsed ftp:// URL, return the transferred bytes or a
// protocol-level failure (a *textproto.Error carries the reply code).
type FTPTransport interface {
	Fetch(ctx context.Context, u *url.URL, timeout time.Duration) ([]byte, error)
}

// ftpTransport is the default FTPTransport, one connection per fetch.
type ftpTransport struct{}

func (ftpTransport) Fetch(ctx context.Context, u *url.URL, timeout time.Duration) ([]byte, error) {
	addr := u.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "21")
	}

	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(timeout))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, err
	}

	r, err := conn.Retr(u.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// FTPAdapter retrieves files over FTP and maps protocol outcomes onto
// the uniform Response shape: a completed transfer is a 200, a 550
// "file unavailable" reply is a 404, any other negative reply is a
// retryable transfer failure.
type FTPAdapter struct {
	transport FTPTransport
	log       logger.Logger
}

// NewFTPAdapter creates an FTP adapter; a nil transport uses an
// anonymous-login connection per fetch.
func NewFTPAdapter(transport FTPTransport, log logger.Logger) *FTPAdapter {
	if transport == nil {
		transport = ftpTransport{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &FTPAdapter{transport: transport, log: log}
}

// Do performs one FTP retrieval. Only GET has an FTP equivalent; the
// scraper rejects other methods before any attempt is made.
func (a *FTPAdapter) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Method != http.MethodGet {
		return nil, errs.Newf(errs.ErrorTypeMethodUnsupported,
			"ftp requests do not support method %q", req.Method)
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "invalid ftp url")
	}

	data, err := a.transport.Fetch(ctx, u, req.Timeout)
	if err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) {
			if protoErr.Code == ftp.StatusFileUnavailable {
				return &Response{
					StatusCode:   http.StatusNotFound,
					Header:       make(http.Header),
					URL:          req.URL,
					RequestedURL: req.URL,
				}, nil
			}
			return nil, &errs.Error{
				Type:    errs.ErrorTypeTransfer,
				Message: protoErr.Msg,
				Code:    protoErr.Code,
				URL:     req.URL,
				Err:     err,
			}
		}
		return nil, classifyTransportError(err, req.URL)
	}

	return &Response{
		StatusCode:   http.StatusOK,
		Header:       make(http.Header),
		Body:         data,
		URL:          req.URL,
		RequestedURL: req.URL,
	}, nil
}
