package pin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGatewayURL(t *testing.T) {
	g := NewGateway("https://gw.example/ipfs", nil)

	require.Equal(t, "https://gw.example/ipfs/Qm123", g.URL("ipfs://Qm123"))
	// non-ipfs references pass through untouched
	require.Equal(t, "https://elsewhere.example/x.png", g.URL("https://elsewhere.example/x.png"))
}

func TestGatewayFetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Qmmeta", r.URL.Path)
		fmt.Fprint(w, `{"name":"Foo","description":"Bar","image":"ipfs://Qmimg"}`)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, srv.Client())
	meta, err := g.FetchMetadata(context.Background(), "ipfs://Qmmeta")
	require.NoError(t, err)
	require.Equal(t, "Foo", meta.Name)
	require.Equal(t, "ipfs://Qmimg", meta.Image)
}

func TestGatewayFetchMetadataErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			fmt.Fprint(w, `not json`)
		}
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, srv.Client())
	_, err := g.FetchMetadata(context.Background(), "ipfs://missing")
	require.ErrorContains(t, err, "status 404")

	_, err = g.FetchMetadata(context.Background(), "ipfs://garbled")
	require.ErrorContains(t, err, "decode metadata")
}

// rewriteTransport sends every request to the test server regardless of host.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = rt.target
	return http.DefaultTransport.RoundTrip(req)
}

func TestPinataPin(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "art.png", hdr.Filename)
		fmt.Fprint(w, `{"IpfsHash":"QmPinned"}`)
	}))
	defer srv.Close()

	hc := &http.Client{Transport: rewriteTransport{target: srv.Listener.Addr().String()}}
	p := NewPinata("secret-jwt", hc, zap.NewNop())

	addr, err := p.Pin(context.Background(), []byte("png-bytes"), Object{Filename: "art.png", ContentType: "image/png"})
	require.NoError(t, err)
	require.Equal(t, "ipfs://QmPinned", addr)
	require.Equal(t, "Bearer secret-jwt", gotAuth)
}

func TestPinataPinUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	hc := &http.Client{Transport: rewriteTransport{target: srv.Listener.Addr().String()}}
	p := NewPinata("secret-jwt", hc, zap.NewNop())

	_, err := p.Pin(context.Background(), []byte("x"), Object{Filename: "a", ContentType: "text/plain"})
	require.ErrorContains(t, err, "status 402")
}
