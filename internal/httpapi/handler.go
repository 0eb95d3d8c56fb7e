// Package httpapi exposes the storefront over HTTP. Handlers decode and
// validate transport concerns, delegate to the services and render the
// {message, data} envelope every route shares.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/domain/order"
	"github.com/shopcore/storefront/internal/domain/user"
	"github.com/shopcore/storefront/internal/metrics"
	"github.com/shopcore/storefront/internal/middleware"
	"github.com/shopcore/storefront/internal/services/orders"
	"github.com/shopcore/storefront/internal/services/products"
	"github.com/shopcore/storefront/internal/services/users"
	"github.com/shopcore/storefront/pkg/logger"
)

// Handler wires the service layer to the router.
type Handler struct {
	users    *users.Service
	products *products.Service
	orders   *orders.Service
	log      *logger.Logger
}

// New constructs the HTTP handler.
func New(users *users.Service, products *products.Service, orders *orders.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{users: users, products: products, orders: orders, log: log}
}

// Register mounts every route on the router. Catalog writes, user listings
// and the order workflow require an authenticated user; signup, login and
// catalog reads stay public. The resolver itself never rejects, so RequireUser
// is the only gate.
func (h *Handler) Register(r *mux.Router) {
	authed := func(fn http.HandlerFunc) http.Handler { return middleware.RequireUser(fn) }

	r.HandleFunc("/", h.welcome).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/users", h.signUp).Methods(http.MethodPost)
	r.HandleFunc("/users/login", h.login).Methods(http.MethodPost)
	r.Handle("/users/batch", authed(h.signUpBatch)).Methods(http.MethodPost)
	r.Handle("/users/me", authed(h.currentUser)).Methods(http.MethodGet)
	r.Handle("/users", authed(h.listUsers)).Methods(http.MethodGet)
	r.Handle("/users/{id:[0-9]+}", authed(h.getUser)).Methods(http.MethodGet)

	r.Handle("/products", authed(h.createProduct)).Methods(http.MethodPost)
	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", h.getProduct).Methods(http.MethodGet)

	r.Handle("/orders", authed(h.createOrder)).Methods(http.MethodPost)
	r.Handle("/orders", authed(h.listOrders)).Methods(http.MethodGet)
	r.Handle("/orders/cart", authed(h.activeOrder)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}", h.getOrder).Methods(http.MethodGet)
	r.Handle("/orders/{id:[0-9]+}/products", authed(h.listLineItems)).Methods(http.MethodGet)
	r.Handle("/orders/{id:[0-9]+}/products", authed(h.addLineItem)).Methods(http.MethodPost)
	r.Handle("/orders/{id:[0-9]+}/complete", authed(h.completeOrder)).Methods(http.MethodGet)
}

type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Message: message, Data: data}); err != nil {
		h.log.WithError(err).Error("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		h.log.WithError(err).Error("request failed")
	}
	h.writeJSON(w, e.HTTPStatus(), e.Message, nil)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, apperr.BadRequest("invalid request body"))
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.BadRequest("id must be an integer")
	}
	return id, nil
}

func (h *Handler) welcome(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, "welcome to the storefront API", nil)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, "ok", nil)
}

type authResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var in users.SignUpInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	u, token, err := h.users.SignUp(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "user created successfully", authResponse{User: u, Token: token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decodeJSON(w, r, &in) {
		return
	}

	u, token, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "login successful", authResponse{User: u, Token: token})
}

func (h *Handler) signUpBatch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Users []users.SignUpInput `json:"users"`
	}
	if !h.decodeJSON(w, r, &in) {
		return
	}

	result, err := h.users.CreateBatch(r.Context(), in.Users)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "batch processed", result)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFrom(r.Context())
	h.writeJSON(w, http.StatusOK, "current user", u)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "users", list)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "user", u)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if !h.decodeJSON(w, r, &in) {
		return
	}

	p, err := h.products.Create(r.Context(), in.Name, in.Price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "product created successfully", p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "products", list)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "product", p)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFrom(r.Context())

	o, err := h.orders.Create(r.Context(), u.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "order created successfully", o)
}

// listOrders returns the caller's completed orders; ?all=true switches to the
// administrative listing over every user.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		list, err := h.orders.ListAll(r.Context())
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, "orders", list)
		return
	}

	u, _ := middleware.UserFrom(r.Context())
	list, err := h.orders.ListForUser(r.Context(), u.ID, order.StatusCompleted)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "orders", list)
}

func (h *Handler) activeOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFrom(r.Context())

	o, err := h.orders.ActiveOrder(r.Context(), u.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "active order", o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "order", o)
}

func (h *Handler) listLineItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, err := h.orders.Get(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	items, err := h.orders.LineItems(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "order products", items)
}

func (h *Handler) addLineItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var in struct {
		ProductID int64 `json:"productId"`
		Quantity  int64 `json:"quantity"`
	}
	if !h.decodeJSON(w, r, &in) {
		return
	}

	item, err := h.orders.AddLineItem(r.Context(), id, in.ProductID, in.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "product added to order successfully", item)
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.orders.Complete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "order completed successfully", o)
}
