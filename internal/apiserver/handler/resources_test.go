package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/database/dbtest"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

func TestCrossTenantIsolation(t *testing.T) {
	f := newFixture(t)
	id := f.createVehicle(t, f.admin, gin.H{"brand": "Toyota", "model": "Corolla", "price": 20000})

	w := f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f.alpha.ID, gjson.Get(w.Body.String(), "tenantId").String())

	assertError(t, f.as(t, f.bravoA, http.MethodGet, "/api/v1/vehicles/"+id, nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, f.as(t, f.bravoA, http.MethodPut, "/api/v1/vehicles/"+id, gin.H{"price": 1}), http.StatusNotFound, "NOT_FOUND")
	assertError(t, f.as(t, f.bravoA, http.MethodDelete, "/api/v1/vehicles/"+id, nil), http.StatusNotFound, "NOT_FOUND")

	w = f.as(t, f.bravoA, http.MethodGet, "/api/v1/vehicles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "total").Int())
	assert.True(t, gjson.Get(w.Body.String(), "data").IsArray())

	// the row is untouched
	w = f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles/"+id, nil)
	assert.Equal(t, float64(20000), gjson.Get(w.Body.String(), "price").Float())
}

func TestListPagingAndFilters(t *testing.T) {
	f := newFixture(t)
	for _, b := range []string{"Toyota", "Ford", "Toyota"} {
		f.createVehicle(t, f.admin, gin.H{"brand": b, "model": "X"})
	}

	w := f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles?pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, int64(3), gjson.Get(body, "total").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "data.#").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "page").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "pageSize").Int())

	w = f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles?brand=Ford", nil)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "total").Int())

	w = f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles?pageSize=1000", nil)
	assert.Equal(t, int64(100), gjson.Get(w.Body.String(), "pageSize").Int())
}

func TestVehicleQuota(t *testing.T) {
	f := newFixture(t)
	small := dbtest.Tenant(t, f.db, "small", 0, 2)
	owner := dbtest.User(t, f.db, small.ID, "owner@small.test", database.RoleAdmin, "")
	tok := f.token(t, owner)

	for i := 0; i < 2; i++ {
		w := f.do(t, http.MethodPost, "/api/v1/vehicles", "small", tok, gin.H{"brand": "Kia", "model": "Rio"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := f.do(t, http.MethodPost, "/api/v1/vehicles", "small", tok, gin.H{"brand": "Kia", "model": "Rio"})
	assertError(t, w, http.StatusForbidden, "VEHICLE_LIMIT_REACHED")

	w = f.do(t, http.MethodGet, "/api/v1/vehicles", "small", tok, nil)
	assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "total").Int())

	// alpha is unlimited
	for i := 0; i < 3; i++ {
		f.createVehicle(t, f.admin, gin.H{"brand": "Kia", "model": "Rio"})
	}
}

func TestUserQuota(t *testing.T) {
	f := newFixture(t)
	small := dbtest.Tenant(t, f.db, "small", 2, 0)
	owner := dbtest.User(t, f.db, small.ID, "owner@small.test", database.RoleAdmin, "")
	tok := f.token(t, owner)

	body := gin.H{"email": "second@small.test", "name": "Second", "password": "long-enough-pw", "role": "VENDEDOR"}
	w := f.do(t, http.MethodPost, "/api/v1/users", "small", tok, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.False(t, gjson.Get(w.Body.String(), "passwordHash").Exists())

	body["email"] = "third@small.test"
	w = f.do(t, http.MethodPost, "/api/v1/users", "small", tok, body)
	assertError(t, w, http.StatusForbidden, "USER_LIMIT_REACHED")
}

func TestRoleGate(t *testing.T) {
	f := newFixture(t)
	vehicle := gin.H{"brand": "Mazda", "model": "3"}

	assertError(t, f.as(t, f.helper, http.MethodPost, "/api/v1/vehicles", vehicle), http.StatusForbidden, "FORBIDDEN_ROLE")
	id := f.createVehicle(t, f.seller, vehicle)
	assertError(t, f.as(t, f.seller, http.MethodDelete, "/api/v1/vehicles/"+id, nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assert.Equal(t, http.StatusOK, f.as(t, f.helper, http.MethodGet, "/api/v1/vehicles/"+id, nil).Code)

	assertError(t, f.as(t, f.seller, http.MethodGet, "/api/v1/users", nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assertError(t, f.as(t, f.seller, http.MethodGet, "/api/v1/vehicles/export", nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assertError(t, f.as(t, f.seller, http.MethodGet, "/api/v1/audit-logs", nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assertError(t, f.as(t, f.helper, http.MethodPut, "/api/v1/config", gin.H{"taxRate": 10}), http.StatusForbidden, "FORBIDDEN_ROLE")
	assertError(t, f.as(t, f.helper, http.MethodPost, "/api/v1/payment-methods", gin.H{"name": "Crypto"}), http.StatusForbidden, "FORBIDDEN_ROLE")

	// clients and test drives are open to every role
	client := f.createClient(t, f.helper, "Ana")
	assert.Equal(t, http.StatusOK, f.as(t, f.helper, http.MethodGet, "/api/v1/config", nil).Code)

	w := f.as(t, f.helper, http.MethodPost, "/api/v1/test-drives", gin.H{
		"vehicleId": id, "clientId": client, "scheduledAt": "2030-01-02T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	drive := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, f.helper.ID, gjson.Get(w.Body.String(), "userId").String())
	assert.Equal(t, int64(30), gjson.Get(w.Body.String(), "durationMinutes").Int())

	assertError(t, f.as(t, f.helper, http.MethodDelete, "/api/v1/test-drives/"+drive, nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assert.Equal(t, http.StatusNoContent, f.as(t, f.seller, http.MethodDelete, "/api/v1/test-drives/"+drive, nil).Code)

	// a super-admin token is not a tenant token
	w = f.do(t, http.MethodGet, "/api/v1/vehicles", "alpha", f.rootToken(t), nil)
	assertError(t, w, http.StatusUnauthorized, "INVALID_TOKEN")
}

func TestVINExists(t *testing.T) {
	f := newFixture(t)
	f.createVehicle(t, f.admin, gin.H{"brand": "VW", "model": "Golf", "vin": "wvwzzz1kz6w000001"})

	w := f.as(t, f.admin, http.MethodPost, "/api/v1/vehicles", gin.H{"brand": "VW", "model": "Polo", "vin": "WVWZZZ1KZ6W000001"})
	assertError(t, w, http.StatusConflict, "VIN_EXISTS")

	// VINs are unique per tenant only
	w = f.as(t, f.bravoA, http.MethodPost, "/api/v1/vehicles", gin.H{"brand": "VW", "model": "Polo", "vin": "WVWZZZ1KZ6W000001"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestSalesDriveVehicleStatus(t *testing.T) {
	f := newFixture(t)
	vehicle := f.createVehicle(t, f.admin, gin.H{"brand": "Honda", "model": "Civic", "price": 18000})
	client := f.createClient(t, f.seller, "Luis")

	vehicleStatus := func(id string) string {
		w := f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles/"+id, nil)
		return gjson.Get(w.Body.String(), "status").String()
	}

	w := f.as(t, f.seller, http.MethodPost, "/api/v1/sales", gin.H{"vehicleId": vehicle, "clientId": client})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, "PENDING", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, float64(18000), gjson.Get(w.Body.String(), "price").Float())
	assert.Equal(t, f.seller.ID, gjson.Get(w.Body.String(), "sellerId").String())
	assert.Equal(t, "RESERVED", vehicleStatus(vehicle))

	w = f.as(t, f.seller, http.MethodPut, "/api/v1/sales/"+sale, gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SOLD", vehicleStatus(vehicle))

	w = f.as(t, f.seller, http.MethodPut, "/api/v1/sales/"+sale, gin.H{"status": "CANCELLED"})
	assertError(t, w, http.StatusConflict, "INVALID_STATUS_TRANSITION")

	w = f.as(t, f.seller, http.MethodPost, "/api/v1/sales", gin.H{"vehicleId": vehicle, "clientId": client})
	assertError(t, w, http.StatusConflict, "VEHICLE_NOT_AVAILABLE")

	// cancelling a pending sale releases the reservation
	other := f.createVehicle(t, f.admin, gin.H{"brand": "Honda", "model": "Fit"})
	w = f.as(t, f.seller, http.MethodPost, "/api/v1/sales", gin.H{"vehicleId": other, "clientId": client, "price": 9000})
	require.Equal(t, http.StatusCreated, w.Code)
	pending := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, "RESERVED", vehicleStatus(other))
	w = f.as(t, f.seller, http.MethodPut, "/api/v1/sales/"+pending, gin.H{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "AVAILABLE", vehicleStatus(other))

	// a sold vehicle cannot be deleted while sales reference it
	w = f.as(t, f.admin, http.MethodDelete, "/api/v1/vehicles/"+vehicle, nil)
	assertError(t, w, http.StatusConflict, "CONFLICT")
	assert.Equal(t, "Vehicle is referenced by 1 sale(s)", gjson.Get(w.Body.String(), "error").String())
}

func TestSalesReferencesStayInTenant(t *testing.T) {
	f := newFixture(t)
	vehicle := f.createVehicle(t, f.admin, gin.H{"brand": "Seat", "model": "Ibiza"})
	foreignClient := f.createClient(t, f.bravoA, "Eva")

	w := f.as(t, f.admin, http.MethodPost, "/api/v1/sales", gin.H{"vehicleId": vehicle, "clientId": foreignClient})
	assertError(t, w, http.StatusNotFound, "NOT_FOUND")

	client := f.createClient(t, f.admin, "Juan")
	w = f.as(t, f.admin, http.MethodPost, "/api/v1/sales", gin.H{"vehicleId": vehicle, "clientId": client, "sellerId": f.bravoA.ID})
	assertError(t, w, http.StatusNotFound, "NOT_FOUND")

	w = f.as(t, f.admin, http.MethodGet, "/api/v1/sales", nil)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "total").Int())
	assert.Equal(t, "AVAILABLE", gjson.Get(f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles/"+vehicle, nil).Body.String(), "status").String())
}

func TestUsersSelfProtectionAndEmail(t *testing.T) {
	f := newFixture(t)

	assertError(t, f.as(t, f.admin, http.MethodDelete, "/api/v1/users/"+f.admin.ID, nil), http.StatusBadRequest, "CANNOT_MODIFY_SELF")
	assertError(t, f.as(t, f.admin, http.MethodPut, "/api/v1/users/"+f.admin.ID, gin.H{"isActive": false}), http.StatusBadRequest, "CANNOT_MODIFY_SELF")
	assertError(t, f.as(t, f.admin, http.MethodPut, "/api/v1/users/"+f.admin.ID, gin.H{"role": "VENDEDOR"}), http.StatusBadRequest, "CANNOT_MODIFY_SELF")

	w := f.as(t, f.admin, http.MethodPut, "/api/v1/users/"+f.admin.ID, gin.H{"name": "Boss"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Boss", gjson.Get(w.Body.String(), "name").String())

	body := gin.H{"email": "Seller@Alpha.test", "name": "Dup", "password": "long-enough-pw", "role": "ASISTENTE"}
	assertError(t, f.as(t, f.admin, http.MethodPost, "/api/v1/users", body), http.StatusConflict, "EMAIL_EXISTS")
	assertError(t, f.as(t, f.admin, http.MethodPut, "/api/v1/users/"+f.helper.ID, gin.H{"email": "seller@alpha.test"}), http.StatusConflict, "EMAIL_EXISTS")

	// the same address may exist in another tenant
	body["email"] = "admin@bravo.test"
	assert.Equal(t, http.StatusCreated, f.as(t, f.admin, http.MethodPost, "/api/v1/users", body).Code)

	w = f.as(t, f.admin, http.MethodPut, "/api/v1/users/"+f.seller.ID, gin.H{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	// a deactivated user's token stops working
	assertError(t, f.as(t, f.seller, http.MethodGet, "/api/v1/vehicles", nil), http.StatusUnauthorized, "INVALID_TOKEN")

	assert.Equal(t, http.StatusNoContent, f.as(t, f.admin, http.MethodDelete, "/api/v1/users/"+f.helper.ID, nil).Code)
}

func TestDocumentsAndFileServing(t *testing.T) {
	f := newFixture(t)
	vehicle := f.createVehicle(t, f.admin, gin.H{"brand": "Fiat", "model": "500"})
	payload := []byte("%PDF-1.4 contract")

	w := f.as(t, f.helper, http.MethodPost, "/api/v1/documents", gin.H{
		"name": "contract.pdf", "mimeType": "application/pdf",
		"data": base64.StdEncoding.EncodeToString(payload), "entityType": "VEHICLE", "entityId": vehicle,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, int64(len(payload)), gjson.Get(w.Body.String(), "size").Int())
	assert.False(t, gjson.Get(w.Body.String(), "data").Exists())

	w = f.do(t, http.MethodGet, "/api/v1/files/"+id, "", f.token(t, f.helper), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, payload, w.Body.Bytes())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline"))

	w = f.do(t, http.MethodGet, "/api/v1/files/"+id+"?download=1", "", f.token(t, f.helper), nil)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "contract.pdf")

	assertError(t, f.do(t, http.MethodGet, "/api/v1/files/"+id, "", f.token(t, f.bravoA), nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, f.do(t, http.MethodGet, "/api/v1/files/"+id, "", "", nil), http.StatusUnauthorized, "NO_TOKEN")
	w = f.do(t, http.MethodGet, "/api/v1/files/"+id, "", f.rootToken(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// attaching to another tenant's entity is a 404
	foreign := f.createVehicle(t, f.bravoA, gin.H{"brand": "Fiat", "model": "Panda"})
	w = f.as(t, f.admin, http.MethodPost, "/api/v1/documents", gin.H{
		"name": "x.txt", "mimeType": "text/plain", "data": base64.StdEncoding.EncodeToString([]byte("x")),
		"entityType": "VEHICLE", "entityId": foreign,
	})
	assertError(t, w, http.StatusNotFound, "NOT_FOUND")

	w = f.as(t, f.admin, http.MethodGet, "/api/v1/documents?entityType=VEHICLE&entityId="+vehicle, nil)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "total").Int())

	assertError(t, f.as(t, f.helper, http.MethodDelete, "/api/v1/documents/"+id, nil), http.StatusForbidden, "FORBIDDEN_ROLE")
	assert.Equal(t, http.StatusNoContent, f.as(t, f.admin, http.MethodDelete, "/api/v1/documents/"+id, nil).Code)
}

func TestRequireEntityRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)

	assert.False(t, requireEntity(NewResources(f.db, nil), c, "INVOICE", "some-id"))
	require.NotNil(t, c.Errors.Last())
	assert.ErrorIs(t, c.Errors.Last().Err, errorx.ErrBadRequest)
	assert.True(t, c.IsAborted())
}

func TestExportVehicles(t *testing.T) {
	f := newFixture(t)
	f.createVehicle(t, f.admin, gin.H{"brand": "Renault", "model": "Clio", "vin": "vf1abc"})
	f.createVehicle(t, f.admin, gin.H{"brand": "Renault", "model": "Megane"})
	f.createVehicle(t, f.bravoA, gin.H{"brand": "Opel", "model": "Corsa"})

	w := f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles/export", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inventory-alpha-")

	x, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows(inventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	var brands []string
	for _, r := range rows[1:] {
		brands = append(brands, r[0])
	}
	assert.ElementsMatch(t, []string{"Renault", "Renault"}, brands)
}

func TestConfigAndDashboard(t *testing.T) {
	f := newFixture(t)

	w := f.as(t, f.admin, http.MethodPut, "/api/v1/config", gin.H{"currency": "EUR", "taxRate": 21})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "EUR", gjson.Get(w.Body.String(), "currency").String())

	w = f.as(t, f.helper, http.MethodGet, "/api/v1/config", nil)
	assert.Equal(t, float64(21), gjson.Get(w.Body.String(), "taxRate").Float())

	f.createVehicle(t, f.admin, gin.H{"brand": "Audi", "model": "A3"})
	w = f.as(t, f.helper, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "usage.vehicles").Int())
	assert.Equal(t, int64(3), gjson.Get(body, "usage.users").Int())
	assert.Equal(t, "BASIC", gjson.Get(body, "limits.plan").String())
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	id := f.createClient(t, f.seller, "Marta")
	require.Equal(t, http.StatusOK, f.as(t, f.seller, http.MethodPut, "/api/v1/clients/"+id, gin.H{"status": "ACTIVE"}).Code)

	w := f.as(t, f.admin, http.MethodGet, "/api/v1/audit-logs?resource=client", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "total").Int())
	assert.Equal(t, f.seller.ID, gjson.Get(body, "data.0.userId").String())
	assert.Equal(t, id, gjson.Get(body, "data.0.resourceId").String())

	logs, _, err := f.db.ListAuditLogs(context.Background(), f.bravo.ID, "", database.ListOptions{}.Normalize())
	require.NoError(t, err)
	assert.Empty(t, logs)
}
