package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/meta-pet-registry/internal/handler"
	"github.com/msomdec/meta-pet-registry/internal/repository/filestore"
	"github.com/msomdec/meta-pet-registry/internal/repository/jsonl"
	"github.com/msomdec/meta-pet-registry/internal/service"
	"github.com/spf13/afero"
)

const (
	testVerifySecret = "test-secret-for-handler-tests-0123456789"
	logPath          = "/data/registrations.jsonl"
	scrollDir        = "/data/scrolls"
	uploadDir        = "/data/uploads"
)

type testServer struct {
	*httptest.Server
	handler http.Handler
	fs      afero.Fs
	store   *jsonl.Store
	client  *http.Client
}

func newTestService(t *testing.T) (*service.RegistrationService, *jsonl.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := jsonl.New(fsys, logPath)
	if err != nil {
		t.Fatalf("jsonl.New: %v", err)
	}
	uploads, err := filestore.New(fsys, uploadDir)
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	scrolls, err := filestore.New(fsys, scrollDir)
	if err != nil {
		t.Fatalf("scrolls: %v", err)
	}
	svc := service.NewRegistrationService(store, uploads, scrolls, service.NewScrollRenderer(),
		service.NewScrollVerifier(testVerifySecret), service.DefaultPetIDLength)
	return svc, store, fsys
}

func newTestServer(t *testing.T, limiter *service.TokenBucket) *testServer {
	t.Helper()
	svc, store, fsys := newTestService(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, svc, limiter)
	h := handler.SecurityHeaders(handler.RequestLogger(mux))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
	return &testServer{Server: srv, handler: h, fs: fsys, store: store, client: client}
}

type upload struct {
	field    string
	filename string
	data     []byte
}

// multipartBody encodes fields and an optional file the way a browser
// submits the registration form.
func multipartBody(t *testing.T, fields map[string]string, file *upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(file.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func (s *testServer) postForm(t *testing.T, fields map[string]string, file *upload) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, file)
	resp, err := s.client.Post(s.URL+"/register", contentType, body)
	if err != nil {
		t.Fatalf("POST /register: %v", err)
	}
	return resp
}
