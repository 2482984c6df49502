package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event subjects
const (
	SubjectCategoryDeleted = "catalog.category.deleted"
	SubjectImportCompleted = "catalog.import.completed"
	SubjectProductsMoved   = "catalog.products.moved"
)

// CategoryDeletedEvent is emitted after a cascade delete finishes
type CategoryDeletedEvent struct {
	CategoryID      string    `json:"categoryId"`
	CategoryName    string    `json:"categoryName"`
	NodesDeleted    int64     `json:"nodesDeleted"`
	ProductsMoved   int64     `json:"productsMoved"`
	ProductsDeleted int64     `json:"productsDeleted"`
	Timestamp       time.Time `json:"timestamp"`
}

// ImportCompletedEvent is emitted after a catalog import commit
type ImportCompletedEvent struct {
	Mode      string    `json:"mode"`
	Total     int       `json:"total"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductsMovedEvent is emitted after a bulk reassignment
type ProductsMovedEvent struct {
	DestinationRootID string    `json:"destinationRootId"`
	UpdatedCount      int64     `json:"updatedCount"`
	SkippedCount      int       `json:"skippedCount"`
	Timestamp         time.Time `json:"timestamp"`
}

// Publisher publishes catalog events to NATS. Events are fire-and-forget:
// a publish failure is logged and never propagated to the caller.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

func (p *Publisher) publish(subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to marshal event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// PublishCategoryDeleted publishes a category deleted event
func (p *Publisher) PublishCategoryDeleted(ctx context.Context, categoryID, categoryName string, nodesDeleted, productsMoved, productsDeleted int64) {
	p.publish(SubjectCategoryDeleted, &CategoryDeletedEvent{
		CategoryID:      categoryID,
		CategoryName:    categoryName,
		NodesDeleted:    nodesDeleted,
		ProductsMoved:   productsMoved,
		ProductsDeleted: productsDeleted,
		Timestamp:       time.Now().UTC(),
	})
}

// PublishImportCompleted publishes an import completed event
func (p *Publisher) PublishImportCompleted(ctx context.Context, mode string, total, created, updated, failed int) {
	p.publish(SubjectImportCompleted, &ImportCompletedEvent{
		Mode:      mode,
		Total:     total,
		Created:   created,
		Updated:   updated,
		Failed:    failed,
		Timestamp: time.Now().UTC(),
	})
}

// PublishProductsMoved publishes a products moved event
func (p *Publisher) PublishProductsMoved(ctx context.Context, destinationRootID string, updatedCount int64, skippedCount int) {
	p.publish(SubjectProductsMoved, &ProductsMovedEvent{
		DestinationRootID: destinationRootID,
		UpdatedCount:      updatedCount,
		SkippedCount:      skippedCount,
		Timestamp:         time.Now().UTC(),
	})
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
