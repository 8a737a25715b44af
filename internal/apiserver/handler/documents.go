package handler

import (
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/middleware"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

const resourceDocument = "document"

// Entity types a document may be attached to
const (
	EntityVehicle   = "VEHICLE"
	EntityClient    = "CLIENT"
	EntitySale      = "SALE"
	EntityTestDrive = "TEST_DRIVE"
)

func (h *Resources) ListDocuments(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	// Data stays out of listings: it is tagged json:"-" and only served by ServeFile
	listScoped[database.Document](h, c, q,
		database.WhereEq("entity_type", strings.ToUpper(c.Query("entityType"))),
		database.WhereEq("entity_id", c.Query("entityId")),
		database.Search(q.Q, "name"))
}

func (h *Resources) GetDocument(c *gin.Context) {
	if v, ok := getScoped[database.Document](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// UploadDocument stores a base64 payload after checking that the entity it is
// attached to belongs to the caller's tenant.
func (h *Resources) UploadDocument(c *gin.Context) {
	var req dto.UploadDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	t, p := scope(c)

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		errorx.Abort(c, errorx.ErrInvalidDocData.Wrap(err))
		return
	}
	if _, _, err := mime.ParseMediaType(req.MimeType); err != nil {
		errorx.Abort(c, errorx.ErrInvalidDocData.WithMessage("Invalid mime type"))
		return
	}

	if req.EntityType != "" && !requireEntity(h, c, req.EntityType, req.EntityID) {
		return
	}

	doc := &database.Document{
		TenantID:   t.ID,
		Name:       strings.TrimSpace(req.Name),
		MimeType:   req.MimeType,
		Size:       int64(len(raw)),
		Data:       req.Data,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		UploadedBy: p.ID,
	}
	if err := database.NewScoped[database.Document](h.db).Create(c.Request.Context(), doc); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceDocument, doc.ID)
	c.JSON(http.StatusCreated, doc)
}

func (h *Resources) DeleteDocument(c *gin.Context) {
	deleteScoped[database.Document](h, c, resourceDocument)
}

// ServeFile returns the decoded bytes of a document. Tenant users only reach
// their own tenant's files; super admins reach any file.
func (h *Resources) ServeFile(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)
	ctx := c.Request.Context()

	var (
		doc *database.Document
		err error
	)
	if p.SuperAdmin {
		doc, err = h.db.GetDocument(ctx, c.Param("id"))
	} else {
		t := middleware.TenantFromContext(c)
		doc, err = database.NewScoped[database.Document](h.db).Get(ctx, t.ID, c.Param("id"))
	}
	if err != nil {
		errorx.Abort(c, err)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		errorx.Abort(c, errorx.ErrInvalidDocData.Wrap(err))
		return
	}
	disposition := "inline"
	if c.Query("download") == "1" || strings.EqualFold(c.Query("download"), "true") {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.Name}))
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, doc.MimeType, raw)
}

// requireEntity checks that the document target exists in the caller's tenant
func requireEntity(h *Resources, c *gin.Context, entityType, id string) bool {
	switch entityType {
	case EntityVehicle:
		return requireInTenant[database.Vehicle](h, c, id, "Vehicle")
	case EntityClient:
		return requireInTenant[database.Client](h, c, id, "Client")
	case EntitySale:
		return requireInTenant[database.Sale](h, c, id, "Sale")
	case EntityTestDrive:
		return requireInTenant[database.TestDrive](h, c, id, "Test drive")
	default:
		errorx.Abort(c, errorx.ErrBadRequest.WithMessage("Unknown entity type %q", entityType))
		return false
	}
}
