package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bitop-dev/studio/internal/httpx"
	"github.com/bitop-dev/studio/internal/provider"
)

// maxVideoBytes caps a single download. A var so tests can lower it.
var maxVideoBytes int64 = 512 << 20

func (p *Provider) StartVideo(ctx context.Context, req provider.VideoRequest) (provider.Operation, error) {
	cfg, err := clientAndConfig(req.ProviderData)
	if err != nil {
		return provider.Operation{}, configError(err)
	}
	if req.Model == "" || req.Prompt == "" {
		return provider.Operation{}, &provider.Error{Provider: providerName, Code: "request_error", Message: "model and prompt are required"}
	}

	inst := videoInstance{Prompt: req.Prompt}
	if req.Image != nil {
		inst.Image = &videoImage{BytesBase64Encoded: req.Image.Data, MimeType: req.Image.MediaType}
	}
	payload := predictRequest{
		Instances: []videoInstance{inst},
		Parameters: videoParameters{
			AspectRatio: req.AspectRatio,
			Resolution:  req.Resolution,
			SampleCount: req.NumberOfVideos,
		},
	}

	raw, err := call(ctx, cfg, http.MethodPost, "models/"+url.PathEscape(req.Model)+":predictLongRunning", payload)
	if err != nil {
		return provider.Operation{}, err
	}
	return decodeOperation(raw)
}

func (p *Provider) GetVideoOperation(ctx context.Context, name string, providerData any) (provider.Operation, error) {
	cfg, err := clientAndConfig(providerData)
	if err != nil {
		return provider.Operation{}, configError(err)
	}
	if name == "" {
		return provider.Operation{}, &provider.Error{Provider: providerName, Code: "request_error", Message: "operation name is required"}
	}
	raw, err := call(ctx, cfg, http.MethodGet, name, nil)
	if err != nil {
		return provider.Operation{}, err
	}
	return decodeOperation(raw)
}

// DownloadVideo fetches a generated video. The URI is absolute and is
// authenticated with the same API key header.
func (p *Provider) DownloadVideo(ctx context.Context, uri string, providerData any) ([]byte, string, error) {
	cfg, err := clientAndConfig(providerData)
	if err != nil {
		return nil, "", configError(err)
	}
	resp, err := httpx.Do(ctx, cfg.HTTPClient, http.MethodGet, uri, nil, headers(cfg))
	if err != nil {
		return nil, "", networkError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", decodeError(resp.StatusCode, httpx.ReadLimited(resp, 1<<20))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxVideoBytes+1))
	if err != nil {
		return nil, "", networkError(err)
	}
	if int64(len(b)) > maxVideoBytes {
		return nil, "", &provider.Error{
			Provider: providerName,
			Code:     "too_large",
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("video exceeds %d bytes", maxVideoBytes),
		}
	}
	mt := resp.Header.Get("Content-Type")
	if mt == "" || strings.HasPrefix(mt, "application/octet-stream") {
		mt = "video/mp4"
	}
	return b, mt, nil
}

func decodeOperation(raw []byte) (provider.Operation, error) {
	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return provider.Operation{}, invalidResponse(err)
	}
	out := provider.Operation{Name: op.Name, Done: op.Done}
	if op.Error != nil {
		out.ErrorCode = op.Error.Code
		out.ErrorMessage = op.Error.Message
		if out.ErrorMessage == "" {
			out.ErrorMessage = "operation failed"
		}
		return out, nil
	}
	if op.Response != nil {
		r := op.Response.GenerateVideoResponse
		for _, s := range r.GeneratedSamples {
			if s.Video.URI != "" {
				out.VideoURIs = append(out.VideoURIs, s.Video.URI)
			}
		}
		if op.Done && len(out.VideoURIs) == 0 && len(r.RAIMediaFilteredReasons) > 0 {
			out.ErrorMessage = strings.Join(r.RAIMediaFilteredReasons, "; ")
		}
	}
	return out, nil
}
