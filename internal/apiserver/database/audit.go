package database

import "context"

// AddAuditLog records a tenant mutation
func (d *DB) AddAuditLog(ctx context.Context, l *AuditLog) error {
	return getDBFromContext(ctx, d.db).Create(l).Error
}

// ListAuditLogs returns the newest audit entries of a tenant
func (d *DB) ListAuditLogs(ctx context.Context, tenantID string, resource string, opts ListOptions) ([]AuditLog, int64, error) {
	return NewScoped[AuditLog](d).List(ctx, tenantID, opts, WhereEq("resource", resource))
}

// GetDocument loads a document by id whatever its tenant. Only platform
// operators use it; tenant routes go through Scoped.
func (d *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := getDBFromContext(ctx, d.db).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
