// File: internal/property/service.go
package property

import (
	"context"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/platform/elasticsearch"
	"propdesk_backend/internal/shared"
)

type Service interface {
	Create(ctx context.Context, actor *shared.Profile, req CreateRequest) (*Property, error)
	Update(ctx context.Context, actor *shared.Profile, id uuid.UUID, req UpdateRequest) (*Property, error)
	Delete(ctx context.Context, actor *shared.Profile, id uuid.UUID) error
	GetByID(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Property, error)
	Search(ctx context.Context, actor *shared.Profile, query SearchQuery) ([]Property, *common.Pagination, error)
}

type ServiceImplementation struct {
	repo     Repository
	esClient *elasticsearch.ESClientWrapper
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, esClient *elasticsearch.ESClientWrapper, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		esClient: esClient,
		logger:   logger.Named("PropertyService"),
	}
}

func (s *ServiceImplementation) Create(ctx context.Context, actor *shared.Profile, req CreateRequest) (*Property, error) {
	p := &Property{
		CompanyID:    *actor.CompanyID,
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		PropertyType: req.PropertyType,
		Status:       StatusManaged,
		AddressLine:  req.AddressLine,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		UnitsCount:   req.UnitsCount,
		Amenities:    req.Amenities,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.indexProperty(ctx, p)

	s.logger.Info("Property created",
		zap.String("propertyID", p.ID.String()),
		zap.String("companyID", p.CompanyID.String()))
	return p, nil
}

func (s *ServiceImplementation) Update(ctx context.Context, actor *shared.Profile, id uuid.UUID, req UpdateRequest) (*Property, error) {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
		p.Slug = slug.Make(*req.Name)
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.AddressLine != nil {
		p.AddressLine = *req.AddressLine
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.PostalCode != nil {
		p.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.UnitsCount != nil {
		p.UnitsCount = *req.UnitsCount
	}
	if req.Amenities != nil {
		p.Amenities = req.Amenities
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.indexProperty(ctx, p)
	return p, nil
}

func (s *ServiceImplementation) Delete(ctx context.Context, actor *shared.Profile, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteFromIndex(ctx, id)
	s.logger.Info("Property deleted", zap.String("propertyID", id.String()))
	return nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Property, error) {
	return s.loadOwned(ctx, actor, id)
}

func (s *ServiceImplementation) Search(ctx context.Context, actor *shared.Profile, query SearchQuery) ([]Property, *common.Pagination, error) {
	return s.repo.Search(ctx, *actor.CompanyID, query)
}

// loadOwned fetches a property and hides its existence from other companies
// by answering not-found for cross-company access.
func (s *ServiceImplementation) loadOwned(ctx context.Context, actor *shared.Profile, id uuid.UUID) (*Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.CompanyID == nil || p.CompanyID != *actor.CompanyID {
		return nil, common.ErrNotFound
	}
	return p, nil
}

// indexProperty pushes the document into the search index. Index failures are
// logged and swallowed; the database row is the source of truth.
func (s *ServiceImplementation) indexProperty(ctx context.Context, p *Property) {
	if s.esClient == nil || s.esClient.Client == nil {
		return
	}

	docJSON, err := PropertyToElasticsearchDoc(p)
	if err != nil {
		s.logger.Error("Failed to convert property to search document",
			zap.String("propertyID", p.ID.String()), zap.Error(err))
		return
	}

	req := esapi.IndexRequest{
		Index:      elasticsearch.PropertiesIndexName,
		DocumentID: p.ID.String(),
		Body:       strings.NewReader(docJSON),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Error("Failed to index property", zap.String("propertyID", p.ID.String()), zap.Error(err))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Error("Search index rejected property document",
			zap.String("propertyID", p.ID.String()),
			zap.String("status", res.Status()))
	}
}

func (s *ServiceImplementation) deleteFromIndex(ctx context.Context, id uuid.UUID) {
	if s.esClient == nil || s.esClient.Client == nil {
		return
	}

	req := esapi.DeleteRequest{
		Index:      elasticsearch.PropertiesIndexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Error("Failed to remove property from search index",
			zap.String("propertyID", id.String()), zap.Error(err))
		return
	}
	res.Body.Close()
}
