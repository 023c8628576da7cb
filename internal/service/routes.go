package service

import (
	"context"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

// AddReverseProxy adds a reverse-proxy route to the site for domain.
func (s *SiteService) AddReverseProxy(ctx context.Context, domain, path, port string) (*caddyfile.SiteBlock, error) {
	return s.update(ctx, domain, func(site *caddyfile.SiteBlock) error {
		_, err := caddyfile.AddReverseProxy(site, path, port)
		return err
	})
}

// AddStaticRoute adds a static-file route to the site for domain.
func (s *SiteService) AddStaticRoute(ctx context.Context, domain, routePath, folderPath string) (*caddyfile.SiteBlock, error) {
	return s.update(ctx, domain, func(site *caddyfile.SiteBlock) error {
		_, err := caddyfile.AddStaticRoute(site, routePath, folderPath)
		return err
	})
}

// DeleteRoute removes the route at index, as numbered by Routes.
func (s *SiteService) DeleteRoute(ctx context.Context, domain string, index int) (*caddyfile.SiteBlock, error) {
	return s.update(ctx, domain, func(site *caddyfile.SiteBlock) error {
		_, err := caddyfile.DeleteRoute(site, index)
		return err
	})
}

// SetEncoding replaces the encode directive of the site for domain.
func (s *SiteService) SetEncoding(ctx context.Context, domain string, encodings ...string) (*caddyfile.SiteBlock, error) {
	return s.update(ctx, domain, func(site *caddyfile.SiteBlock) error {
		_, err := caddyfile.SetEncoding(site, encodings...)
		return err
	})
}

// Routes returns the numbered route table of the site for domain.
func (s *SiteService) Routes(ctx context.Context, domain string) ([]caddyfile.Route, error) {
	site, err := s.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	return caddyfile.Summarize(site).Routes, nil
}
