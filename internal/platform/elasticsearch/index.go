package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const PropertiesIndexName = "properties"

// definePropertiesMapping returns the JSON string for the properties index mapping.
func definePropertiesMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":          map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":          map[string]interface{}{"type": "keyword"},
				"company_id":    map[string]interface{}{"type": "keyword"},
				"address_line1": map[string]interface{}{"type": "text"},
				"city":          map[string]interface{}{"type": "keyword"},
				"postal_code":   map[string]interface{}{"type": "keyword"},
				"country":       map[string]interface{}{"type": "keyword"},
				"property_type": map[string]interface{}{"type": "keyword"},
				"status":        map[string]interface{}{"type": "keyword"},
				"amenities":     map[string]interface{}{"type": "keyword"},
				"units_count":   map[string]interface{}{"type": "integer"},
				"notes":         map[string]interface{}{"type": "text"},
				"created_at":    map[string]interface{}{"type": "date"},
				"updated_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling properties mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreatePropertiesIndexIfNotExists creates the properties index with the
// defined mapping if it does not already exist.
func CreatePropertiesIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{PropertiesIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if properties index exists", zap.Error(err))
		return fmt.Errorf("error checking if properties index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Properties index already exists", zap.String("index_name", PropertiesIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Unexpected status while checking properties index",
			zap.String("status", res.Status()),
			zap.String("index_name", PropertiesIndexName),
		)
		return fmt.Errorf("error checking if properties index exists: status %s", res.Status())
	}

	mappingJSON, err := definePropertiesMapping()
	if err != nil {
		log.Error("Failed to define properties mapping", zap.Error(err))
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: PropertiesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating properties index", zap.Error(err), zap.String("index_name", PropertiesIndexName))
		return fmt.Errorf("error creating properties index %s: %w", PropertiesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse properties index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create properties index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", PropertiesIndexName),
			)
		}
		return fmt.Errorf("failed to create properties index %s: status %s", PropertiesIndexName, createRes.Status())
	}

	log.Info("Properties index created successfully", zap.String("index_name", PropertiesIndexName))
	return nil
}
