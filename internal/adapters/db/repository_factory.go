package db

import (
	"fleetops-disposal-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetDisposalRequestRepository returns the disposal request repository
func (f *RepositoryFactory) GetDisposalRequestRepository() outbound.DisposalRequestRepository {
	return NewDisposalRequestRepository(f.conn)
}

// GetAuctionRepository returns the auction repository
func (f *RepositoryFactory) GetAuctionRepository() outbound.AuctionRepository {
	return NewAuctionRepository(f.conn)
}

// GetBidRepository returns the bid repository
func (f *RepositoryFactory) GetBidRepository() outbound.BidRepository {
	return NewBidRepository(f.conn)
}

// GetVehicleRepository returns the vehicle repository
func (f *RepositoryFactory) GetVehicleRepository() outbound.VehicleRepository {
	return NewVehicleRepository(f.conn)
}

// GetAuditLog returns the audit trail repository
func (f *RepositoryFactory) GetAuditLog() outbound.AuditLog {
	return NewAuditRepository(f.conn)
}
