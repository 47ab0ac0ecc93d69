// Package previewserver serves a built catalog and its images the way they will be
// published, so the asset hrefs written into the catalog resolve locally.
package previewserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"

	"sar-stac/assets"
	"sar-stac/catalog"
)

type Options struct {
	// RootURL is the base URL the catalog was built for; only its path is used.
	RootURL      string
	ImagesPrefix string
	ImagesDir    string
	CatalogDir   string
	// CatalogPrefix is the URL segment the catalog is published under.
	CatalogPrefix string
}

type Server struct {
	fs      afero.Fs
	catalog *catalog.Catalog
	opts    Options
	mount   string
	router  *mux.Router
}

func New(fs afero.Fs, cat *catalog.Catalog, opts Options) (*Server, error) {
	u, err := url.Parse(opts.RootURL)
	if err != nil {
		return nil, fmt.Errorf("bad root url %q: %w", opts.RootURL, err)
	}
	s := &Server{
		fs:      fs,
		catalog: cat,
		opts:    opts,
		mount:   strings.TrimRight(u.Path, "/"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	httpFs := afero.NewHttpFs(s.fs)

	api := router.PathPrefix(s.mount + "/api").Subrouter()
	api.HandleFunc("/search", s.serveSearch).Methods("GET")
	api.HandleFunc("/thumb/{id}", s.serveThumb).Methods("GET")
	api.HandleFunc("/tiles/{z:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}.png", s.serveTile).Methods("GET")

	images := s.mount + "/" + s.opts.ImagesPrefix + "/"
	router.PathPrefix(images).Handler(
		http.StripPrefix(images, http.FileServer(httpFs.Dir(s.opts.ImagesDir)))).Methods("GET", "HEAD")

	catalogPath := s.mount + "/" + s.opts.CatalogPrefix + "/"
	router.PathPrefix(catalogPath).Handler(
		http.StripPrefix(catalogPath, http.FileServer(httpFs.Dir(s.opts.CatalogDir)))).Methods("GET", "HEAD")
	return router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// serveThumb redirects to the item's thumbnail asset.
func (s *Server) serveThumb(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	it, ok := s.catalog.Item(id)
	if !ok {
		http.Error(w, fmt.Sprintf("no item %q", id), http.StatusNotFound)
		return
	}
	_, a, ok := it.Assets.WithRole(assets.RoleThumbnail)
	if !ok {
		http.Error(w, fmt.Sprintf("item %q has no thumbnail", id), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, a.Href, http.StatusFound)
}

// ListenAndServe serves on port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()
	log.Infof("Serving catalog %q on :%d%s", s.catalog.ID, port, s.mount)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Infof("Shutdown")
	return nil
}
