// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"propdesk_backend/internal/config"
	"propdesk_backend/internal/platform/database"
	platformElasticsearch "propdesk_backend/internal/platform/elasticsearch"
	"propdesk_backend/internal/platform/logger"
	"propdesk_backend/internal/property"
	"propdesk_backend/internal/property/esutil"
)

func main() {
	syncPropertiesCmd := flag.NewFlagSet("sync-properties", flag.ExitOnError)
	batchSize := syncPropertiesCmd.Int("batch-size", 100, "Batch size for syncing properties")
	esRefresh := syncPropertiesCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-properties" {
		syncPropertiesCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
		}
		defer database.CloseGORMDB(db)

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
		}
		if esClient == nil {
			appLogger.Fatal("FATAL: Elasticsearch client is not configured, set ELASTICSEARCH_URL to run the sync.")
		}

		if err := platformElasticsearch.CreatePropertiesIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		}

		propertyRepo := property.NewGORMRepository(db)

		if err := runPropertySync(propertyRepo, esClient, appLogger, *batchSize, *esRefresh); err != nil {
			appLogger.Fatal("FATAL: Property synchronization failed", zap.Error(err))
		}
		appLogger.Info("Property synchronization completed successfully.")
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if err := database.AutoMigrate(server.DB); err != nil {
		log.Fatalf("FATAL: Failed to run schema migration: %v", err)
	}

	if server.ESClient != nil {
		if err := platformElasticsearch.CreatePropertiesIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch properties index.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runPropertySync pushes every property into the search index in batches via
// the bulk API.
func runPropertySync(
	propertyRepo property.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting property synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	totalSynced := 0
	totalFailed := 0
	offset := 0
	batchNumber := 1

	for {
		properties, err := propertyRepo.FindBatch(context.Background(), batchSize, offset)
		if err != nil {
			logger.Error("Failed to fetch batch of properties", zap.Error(err), zap.Int("batchNumber", batchNumber))
			return fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}

		if len(properties) == 0 {
			logger.Info("No more properties to sync.")
			break
		}

		var bulkRequestBody strings.Builder
		batchIDs := make([]string, 0, len(properties))

		for i := range properties {
			p := &properties[i]
			docJSON, errDoc := esutil.PropertyToElasticsearchDoc(p)
			if errDoc != nil {
				logger.Error("Failed to convert property to Elasticsearch document",
					zap.String("propertyID", p.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue
			}

			batchIDs = append(batchIDs, p.ID.String())
			bulkRequestBody.WriteString(fmt.Sprintf(`{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`,
				platformElasticsearch.PropertiesIndexName, p.ID.String(), "\n"))
			bulkRequestBody.WriteString(docJSON)
			bulkRequestBody.WriteString("\n")
		}

		if bulkRequestBody.Len() > 0 {
			synced, failed := sendBulk(esClient, logger, bulkRequestBody.String(), batchIDs, esRefresh, batchNumber)
			totalSynced += synced
			totalFailed += failed
		}

		offset += len(properties)
		batchNumber++
	}

	logger.Info("Property synchronization finished",
		zap.Int("totalSynced", totalSynced),
		zap.Int("totalFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d properties failed to sync", totalFailed)
	}
	return nil
}

func sendBulk(
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	body string,
	batchIDs []string,
	esRefresh string,
	batchNumber int,
) (synced, failed int) {
	req := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: esRefresh,
	}

	res, err := req.Do(context.Background(), esClient.Client)
	if err != nil {
		logger.Error("Failed to send bulk request to Elasticsearch", zap.Error(err), zap.Int("batchNumber", batchNumber))
		return 0, len(batchIDs)
	}
	defer res.Body.Close()

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		logger.Error("Failed to parse Elasticsearch bulk response body", zap.Error(err), zap.Int("batchNumber", batchNumber))
		return 0, len(batchIDs)
	}

	if !bulkResponse.Errors && !res.IsError() {
		return len(bulkResponse.Items), 0
	}

	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil || item.Index.Status >= 300 {
			logger.Error("Failed to index property document in bulk batch",
				zap.String("propertyID", item.Index.ID),
				zap.Any("error", item.Index.Error),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed
}
