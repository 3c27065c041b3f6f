package pin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"
)

const pinataEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// Pinata pins files through the Pinata pinning API using a bearer JWT.
type Pinata struct {
	token string
	http  *http.Client
	log   *zap.Logger
}

var _ Pinner = (*Pinata)(nil)

// NewPinata constructs a Pinata client.
func NewPinata(token string, hc *http.Client, log *zap.Logger) *Pinata {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pinata{token: token, http: hc, log: log}
}

// Pin uploads the payload as a multipart file and returns its ipfs://
// content address.
func (p *Pinata) Pin(ctx context.Context, data []byte, obj Object) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, obj.Filename))
	hdr.Set("Content-Type", obj.ContentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("pin %s: %w", obj.Filename, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("pin %s: %w", obj.Filename, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("pin %s: %w", obj.Filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pinataEndpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin %s: %w", obj.Filename, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("pin %s: %w", obj.Filename, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pin %s: status %d: %s", obj.Filename, resp.StatusCode, body)
	}

	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("pin %s: decode response: %w", obj.Filename, err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pin %s: empty content hash in response", obj.Filename)
	}
	p.log.Info("pinned object",
		zap.String("filename", obj.Filename),
		zap.Int("bytes", len(data)),
		zap.String("hash", out.IpfsHash),
	)
	return "ipfs://" + out.IpfsHash, nil
}
