package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/testutil"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx"
)

const testSecret = "test-secret"

type APISuite struct {
	suite.Suite
	store  *store.Store
	router *gin.Engine
	user   *domain.User
	admin  *domain.User
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = testutil.NewStore(s.T())
	catalog := service.NewCatalogService(s.store, nil, 0)
	s.router = gin.New()
	RegisterRoutes(s.router, Deps{
		Store:     s.store,
		Accounts:  service.NewAccountService(s.store, testSecret),
		Catalog:   catalog,
		Carts:     service.NewCartService(s.store),
		Orders:    service.NewOrderService(s.store, catalog),
		JWTSecret: testSecret,
	})
	s.user = testutil.User(s.T(), s.store, domain.RoleUser)
	s.admin = testutil.User(s.T(), s.store, domain.RoleAdmin)
}

func (s *APISuite) do(method, path string, body any, who *domain.User) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		tok, err := utils.GenerateJWT(who.ID, who.Role, testSecret)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, dest any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest))
}

func (s *APISuite) order(product *domain.Product, quantity int, who *domain.User) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/order", gin.H{
		"items":           []gin.H{{"productId": product.ID, "quantity": quantity}},
		"shippingAddress": gin.H{"firstName": "Ada", "lastName": "L", "address": "1 Main", "city": "X", "state": "Y", "zipCode": "1"},
	}, who)
}

func (s *APISuite) TestRegisterLoginMe() {
	w := s.do(http.MethodPost, "/register", gin.H{"name": "Ann", "email": "Ann@Example.com", "phone": "1", "password": "pw"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Contains(w.Header().Get("Set-Cookie"), "access_token=")

	w = s.do(http.MethodPost, "/register", gin.H{"name": "Ann", "email": "ann@example.com", "phone": "1", "password": "pw"}, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "wrong"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "pw"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var session struct {
		Token string `json:"token"`
	}
	s.decode(w, &session)
	s.NotEmpty(session.Token)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: session.Token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)
	var me domain.User
	s.decode(rec, &me)
	s.Equal("ann@example.com", me.Email)
	s.NotContains(rec.Body.String(), "password")

	w = s.do(http.MethodGet, "/me", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("null", w.Body.String())
}

func (s *APISuite) TestCatalogWritesNeedAdmin() {
	body := gin.H{"name": "Books"}
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/categories", body, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/categories", body, s.user).Code)

	w := s.do(http.MethodPost, "/categories", body, s.admin)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		CategoryID string `json:"categoryId"`
	}
	s.decode(w, &created)

	w = s.do(http.MethodPost, "/products", gin.H{"title": "Go", "price": "12.50", "stock": 3, "categoryId": created.CategoryID}, s.admin)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/products", gin.H{"title": "Lost", "price": "1", "stock": 1, "categoryId": "missing"}, s.admin)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/products/category/"+created.CategoryID, nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var products []domain.Product
	s.decode(w, &products)
	s.Require().Len(products, 1)
	s.Equal("12.5", products[0].Price.String())

	w = s.do(http.MethodGet, "/search?q=go", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &products)
	s.Len(products, 1)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/categories/"+created.CategoryID, nil, s.admin).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/categories/"+created.CategoryID, nil, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/products/"+products[0].ID, nil, nil).Code)
}

func (s *APISuite) TestGuestCartIsAcknowledged() {
	p := testutil.Product(s.T(), s.store, "Pen", "1.00", 10)
	w := s.do(http.MethodPost, "/cart/add", gin.H{"productId": p.ID}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"guest":true`)

	w = s.do(http.MethodGet, "/cart", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("[]", w.Body.String())
}

func (s *APISuite) TestUserCart() {
	p := testutil.Product(s.T(), s.store, "Pen", "1.00", 10)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/cart/add", gin.H{"productId": p.ID, "quantity": 2}, s.user).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/cart/add", gin.H{"productId": p.ID}, s.user).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/cart/add", gin.H{"productId": p.ID, "quantity": 0}, s.user).Code)

	w := s.do(http.MethodGet, "/cart", nil, s.user)
	s.Require().Equal(http.StatusOK, w.Code)
	var lines []domain.CartLine
	s.decode(w, &lines)
	s.Require().Len(lines, 1)
	s.Equal(3, lines[0].Quantity)

	s.Equal(http.StatusForbidden, s.do(http.MethodPut, "/cart/update/"+lines[0].ID, gin.H{"quantity": 1}, s.admin).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/cart/update/"+lines[0].ID, gin.H{"quantity": 1}, s.user).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/cart/remove/"+lines[0].ID, nil, s.user).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/cart/remove/"+lines[0].ID, nil, s.user).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/cart/clear", nil, s.user).Code)
}

func (s *APISuite) TestOrderLifecycle() {
	p := testutil.Product(s.T(), s.store, "Lamp", "20.00", 3)

	s.Equal(http.StatusUnauthorized, s.order(p, 1, nil).Code)

	w := s.order(p, 5, s.user)
	s.Require().Equal(http.StatusConflict, w.Code)
	var shortfall struct {
		Available int `json:"available"`
		Requested int `json:"requested"`
	}
	s.decode(w, &shortfall)
	s.Equal(3, shortfall.Available)
	s.Equal(5, shortfall.Requested)

	w = s.order(p, 2, s.user)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"orderId"`
	}
	s.decode(w, &created)
	s.Equal(1, testutil.Stock(s.T(), s.store, p.ID))

	other := testutil.User(s.T(), s.store, domain.RoleUser)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/"+created.OrderID, nil, other).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/missing-order", nil, s.user).Code)

	w = s.do(http.MethodGet, "/"+created.OrderID, nil, s.user)
	s.Require().Equal(http.StatusOK, w.Code)
	var view domain.OrderView
	s.decode(w, &view)
	s.Equal("40", view.Total.String())
	s.Require().NotNil(view.ShippingAddress)
	s.Equal("Ada", view.ShippingAddress.FirstName)

	w = s.do(http.MethodGet, "/my", nil, s.user)
	s.Require().Equal(http.StatusOK, w.Code)
	var mine []domain.OrderView
	s.decode(w, &mine)
	s.Len(mine, 1)

	status := "/" + created.OrderID + "/status"
	s.Equal(http.StatusForbidden, s.do(http.MethodPut, status, gin.H{"status": "processing"}, s.user).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodPut, status, gin.H{"status": "shipped"}, s.admin).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, status, gin.H{"status": "lost"}, s.admin).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPut, status+"?force=true", gin.H{"status": "shipped"}, s.admin).Code)

	s.Equal(http.StatusConflict, s.do(http.MethodDelete, "/"+created.OrderID+"/cancel", nil, s.user).Code)
	s.Equal(1, testutil.Stock(s.T(), s.store, p.ID))
}

func (s *APISuite) TestCancelRestoresStock() {
	p := testutil.Product(s.T(), s.store, "Mug", "5.00", 4)
	w := s.order(p, 3, s.user)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"orderId"`
	}
	s.decode(w, &created)

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/"+created.OrderID+"/cancel", nil, testutil.User(s.T(), s.store, domain.RoleUser)).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/"+created.OrderID+"/cancel", nil, s.user).Code)
	s.Equal(4, testutil.Stock(s.T(), s.store, p.ID))
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/"+created.OrderID+"/cancel", nil, s.user).Code)
}

func (s *APISuite) TestAdminReports() {
	p := testutil.Product(s.T(), s.store, "Desk", "100.00", 2)
	s.Require().Equal(http.StatusCreated, s.order(p, 1, s.user).Code)

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin/all", nil, s.user).Code)

	w := s.do(http.MethodGet, "/admin/all", nil, s.admin)
	s.Require().Equal(http.StatusOK, w.Code)
	var all []domain.OrderView
	s.decode(w, &all)
	s.Require().Len(all, 1)
	s.Require().NotNil(all[0].User)
	s.Equal(s.user.Email, all[0].User.Email)

	w = s.do(http.MethodGet, "/admin/stats", nil, s.admin)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats domain.OrderStats
	s.decode(w, &stats)
	s.Equal(1, stats.TotalOrders)
	s.Equal(1, stats.PendingOrders)
	s.True(stats.TotalRevenue.IsZero())

	w = s.do(http.MethodGet, "/admin/products/export", nil, s.admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(xlsxContentType, w.Header().Get("Content-Type"))
	s.True(strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	book, err := xlsx.OpenBinary(w.Body.Bytes())
	s.Require().NoError(err)
	s.Require().Len(book.Sheets, 1)
	s.Equal("Products", book.Sheets[0].Name)
	s.Equal("Desk", book.Sheets[0].Rows[1].Cells[1].Value)
}

func (s *APISuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"cache":"disabled"`)
}
