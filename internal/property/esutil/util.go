// File: internal/property/esutil/util.go
package esutil

import (
	"propdesk_backend/internal/property"
)

// PropertyToElasticsearchDoc converts a property into its search index
// document representation.
func PropertyToElasticsearchDoc(p *property.Property) (string, error) {
	return property.PropertyToElasticsearchDoc(p)
}
