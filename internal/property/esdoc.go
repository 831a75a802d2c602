// File: internal/property/esdoc.go
package property

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PropertyToElasticsearchDoc converts a property into its search index
// document representation.
func PropertyToElasticsearchDoc(p *Property) (string, error) {
	if p == nil {
		return "", errors.New("property cannot be nil")
	}

	doc := map[string]interface{}{
		"name":          p.Name,
		"slug":          p.Slug,
		"company_id":    p.CompanyID.String(),
		"property_type": string(p.PropertyType),
		"status":        string(p.Status),
		"address_line1": p.AddressLine,
		"city":          p.City,
		"postal_code":   p.PostalCode,
		"country":       p.Country,
		"units_count":   p.UnitsCount,
		"amenities":     []string(p.Amenities),
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
	if p.Notes != nil {
		doc["notes"] = *p.Notes
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling property to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}
