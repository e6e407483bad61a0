package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/gorilla/mux"

	"github.com/antmrlt/API64/core"
)

// UploadRequest is the JSON body of POST /upload. Pointer and raw fields let
// the handler tell absent fields from mistyped ones.
type UploadRequest struct {
	ContentType  *string         `json:"content_type"`
	Base64String *string         `json:"base64_string"`
	SHA256       json.RawMessage `json:"sha256,omitempty"`
}

// ResponseUpload is the body of a successful upload.
type ResponseUpload struct {
	Message    string `json:"message"`
	FileURL    string `json:"file_url"`
	FileSHA256 string `json:"file_sha256,omitempty"`
	Size       int64  `json:"size"`
}

func (s *Server) handleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		credential := r.Header.Get(HeaderAPIKey)
		if err := s.engine.Authenticate(credential); err != nil {
			respondError(w, r, err)
			return
		}

		body := io.Reader(r.Body)
		if s.opts.MaxBodyBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
		}

		req, err := decodeUpload(body)
		if err != nil {
			respondError(w, r, err)
			return
		}

		res, err := s.engine.Ingest(r.Context(), credential, req)
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, ResponseUpload{
			Message:    fmt.Sprintf("File saved as %s", res.Name),
			FileURL:    res.URL,
			FileSHA256: res.SHA256,
			Size:       res.Size,
		})
	}
}

func decodeUpload(r io.Reader) (core.IngestionRequest, error) {
	var body UploadRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&body); err != nil {
		return core.IngestionRequest{}, bodyError(err)
	}
	// The object must be the whole body.
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data")
		}
		return core.IngestionRequest{}, bodyError(err)
	}

	if body.ContentType == nil || body.Base64String == nil {
		return core.IngestionRequest{}, fmt.Errorf("%w: base64_string and content_type are required in payload", core.ErrValidation)
	}

	req := core.IngestionRequest{
		ContentType:    *body.ContentType,
		EncodedPayload: *body.Base64String,
	}

	if raw := bytes.TrimSpace(body.SHA256); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &req.WantDigest); err != nil {
			return core.IngestionRequest{}, fmt.Errorf("%w: sha256 must be a boolean", core.ErrValidation)
		}
	}

	return req, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: body exceeds %d bytes", core.ErrValidation, maxErr.Limit)
	}
	return fmt.Errorf("%w: body is not a valid JSON object", core.ErrValidation)
}

func (s *Server) handleRetrieve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(mux.Vars(r)["filename"])
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidName, err))
			return
		}

		f, err := s.engine.Retrieve(r.Context(), name)
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer f.Close()

		if mt, ok := s.engine.Resolver().MediaType(extensionOf(name)); ok {
			w.Header().Set("Content-Type", mt)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		http.ServeContent(w, r, name, f.ModTime(), f)
	}
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func extensionOf(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
