package storage

import "github.com/shaharishay14/service-tracker/internal/model"

// RequestWriter is the interface any export backend must satisfy.
type RequestWriter interface {
	Write(rows []model.ServiceRequest) error
	Close() error
}
