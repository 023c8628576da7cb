package service

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

// List returns every site in file order.
func (s *SiteService) List(ctx context.Context) ([]*caddyfile.SiteBlock, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Sites(), nil
}

// ListSites returns every site keyed by domain.
func (s *SiteService) ListSites(ctx context.Context) (map[string]*caddyfile.SiteBlock, error) {
	sites, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*caddyfile.SiteBlock, len(sites))
	for _, site := range sites {
		out[site.Domain] = site
	}
	return out, nil
}

// Get returns the site for domain.
func (s *SiteService) Get(ctx context.Context, domain string) (*caddyfile.SiteBlock, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	site := doc.Site(domain)
	if site == nil {
		return nil, fmt.Errorf("%w: %s", caddyfile.ErrSiteNotFound, domain)
	}
	return site, nil
}

// CreateSite adds a new site. Unless overwrite is set, an existing domain
// fails with ErrSiteExists and nothing is written.
func (s *SiteService) CreateSite(ctx context.Context, site *caddyfile.SiteBlock, overwrite bool) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if doc.HasSite(site.Domain) && !overwrite {
		return fmt.Errorf("%w: %s", ErrSiteExists, site.Domain)
	}
	doc.SetSite(site)
	if err := s.save(ctx, doc); err != nil {
		return err
	}
	s.logger.Debug("created site", "domain", site.Domain)
	return nil
}

// SaveUpdatedSite replaces the site with the same domain, or inserts it,
// then persists the whole document.
func (s *SiteService) SaveUpdatedSite(ctx context.Context, site *caddyfile.SiteBlock) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	doc.SetSite(site)
	return s.save(ctx, doc)
}

// DeleteSite removes the site for domain and persists the document. An
// absent domain returns an error wrapping caddyfile.ErrSiteNotFound and
// writes nothing.
func (s *SiteService) DeleteSite(ctx context.Context, domain string) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := doc.DeleteSite(domain); err != nil {
		return err
	}
	if err := s.save(ctx, doc); err != nil {
		return err
	}
	s.logger.Debug("deleted site", "domain", domain)
	return nil
}
