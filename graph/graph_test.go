package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/kcmvp/crm/crm"
	"github.com/kcmvp/crm/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

type GraphTestSuite struct {
	suite.Suite
	schema graphql.Schema
}

func (s *GraphTestSuite) SetupTest() {
	schema, err := NewSchema(crm.NewService(testdb.Open(s.T()), nil))
	s.Require().NoError(err)
	s.schema = schema
}

func TestGraphTestSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

// exec runs query and returns its data as JSON together with the error messages.
func (s *GraphTestSuite) exec(query string, vars map[string]any) (gjson.Result, []string) {
	res := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
	data, err := json.Marshal(res.Data)
	s.Require().NoError(err)
	msgs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		msgs = append(msgs, e.Message)
	}
	return gjson.ParseBytes(data), msgs
}

func (s *GraphTestSuite) mustExec(query string, vars map[string]any) gjson.Result {
	data, errs := s.exec(query, vars)
	s.Require().Empty(errs)
	return data
}

const createCustomer = `mutation($input: CustomerInput!) {
	createCustomer(input: $input) { customer { id name email phone createdAt } message }
}`

const createProduct = `mutation($input: ProductInput!) {
	createProduct(input: $input) { product { id name price stock } }
}`

const createOrder = `mutation($input: OrderInput!) {
	createOrder(input: $input) { order { id totalAmount orderDate customer { email } products { name } } }
}`

func (s *GraphTestSuite) customer(name, email string) string {
	data := s.mustExec(createCustomer, map[string]any{"input": map[string]any{"name": name, "email": email}})
	return data.Get("createCustomer.customer.id").String()
}

func (s *GraphTestSuite) product(name string, price any, stock int) string {
	data := s.mustExec(createProduct, map[string]any{"input": map[string]any{"name": name, "price": price, "stock": stock}})
	return data.Get("createProduct.product.id").String()
}

func (s *GraphTestSuite) TestHello() {
	data := s.mustExec(`{ hello }`, nil)
	s.Equal(Hello, data.Get("hello").String())
}

func (s *GraphTestSuite) TestCreateCustomer() {
	data := s.mustExec(createCustomer, map[string]any{"input": map[string]any{
		"name": "Alice", "email": "alice@example.com", "phone": "+1234567890",
	}})
	s.Equal(crm.MsgCustomerCreated, data.Get("createCustomer.message").String())
	s.Equal("Alice", data.Get("createCustomer.customer.name").String())
	s.Equal("+1234567890", data.Get("createCustomer.customer.phone").String())
	_, err := time.Parse(time.RFC3339, data.Get("createCustomer.customer.createdAt").String())
	s.NoError(err)

	data, errs := s.exec(createCustomer, map[string]any{"input": map[string]any{"name": "Alice", "email": "alice@example.com"}})
	s.Equal([]string{crm.MsgEmailExists}, errs)
	s.Equal(gjson.Null, data.Get("createCustomer").Type)

	_, errs = s.exec(createCustomer, map[string]any{"input": map[string]any{"name": "Bob", "email": "bob@example.com", "phone": "555"}})
	s.Equal([]string{crm.MsgInvalidPhone}, errs)
}

func (s *GraphTestSuite) TestBulkCreateCustomers() {
	data := s.mustExec(`mutation($inputs: [CustomerInput]!) {
		bulkCreateCustomers(inputs: $inputs) { customers { name } errors }
	}`, map[string]any{"inputs": []any{
		map[string]any{"name": "Alice", "email": "alice@example.com"},
		map[string]any{"name": "Alice", "email": "alice@example.com"},
		map[string]any{"name": "Bob", "email": "bob@example.com", "phone": "oops"},
		map[string]any{"name": "Carol", "email": "carol@example.com", "phone": "123-456-7890"},
	}})
	s.Equal(`["Alice","Carol"]`, data.Get("bulkCreateCustomers.customers.#.name").Raw)
	s.Equal(`["Email alice@example.com already exists","Invalid phone format for Bob"]`, data.Get("bulkCreateCustomers.errors").Raw)
}

func (s *GraphTestSuite) TestCreateProduct() {
	data := s.mustExec(`mutation { createProduct(input: {name: "Laptop", price: "999.99"}) { product { name price stock } } }`, nil)
	s.Equal("999.99", data.Get("createProduct.product.price").String())
	s.Equal(int64(0), data.Get("createProduct.product.stock").Int())

	data = s.mustExec(`mutation { createProduct(input: {name: "Pen", price: 2}) { product { price } } }`, nil)
	s.Equal("2.00", data.Get("createProduct.product.price").String())

	data = s.mustExec(createProduct, map[string]any{"input": map[string]any{"name": "Mouse", "price": 19.99}})
	s.Equal("19.99", data.Get("createProduct.product.price").String())

	_, errs := s.exec(createProduct, map[string]any{"input": map[string]any{"name": "Free", "price": "0"}})
	s.Equal([]string{crm.MsgPriceNotPositive}, errs)
	_, errs = s.exec(createProduct, map[string]any{"input": map[string]any{"name": "Gone", "price": "1.00", "stock": -1}})
	s.Equal([]string{crm.MsgStockNegative}, errs)
}

func (s *GraphTestSuite) TestCreateOrder() {
	alice := s.customer("Alice", "alice@example.com")
	laptop := s.product("Laptop", "999.99", 10)
	mouse := s.product("Mouse", "19.99", 50)

	data := s.mustExec(createOrder, map[string]any{"input": map[string]any{
		"customerId": alice, "productIds": []any{laptop, mouse},
	}})
	order := data.Get("createOrder.order")
	s.Equal("1019.98", order.Get("totalAmount").String())
	s.Equal("alice@example.com", order.Get("customer.email").String())
	s.Equal(`["Laptop","Mouse"]`, order.Get("products.#.name").Raw)

	_, errs := s.exec(createOrder, map[string]any{"input": map[string]any{"customerId": "404", "productIds": []any{laptop}}})
	s.Equal([]string{"Customer with ID 404 does not exist"}, errs)
	_, errs = s.exec(createOrder, map[string]any{"input": map[string]any{"customerId": alice, "productIds": []any{mouse, "77", "78"}}})
	s.Equal([]string{"Product with ID 77 does not exist"}, errs)
	_, errs = s.exec(createOrder, map[string]any{"input": map[string]any{"customerId": alice, "productIds": []any{}}})
	s.Equal([]string{crm.MsgNoProducts}, errs)

	data = s.mustExec(`{ customers { email orders { totalAmount } } }`, nil)
	s.Equal(`["1019.98"]`, data.Get("customers.0.orders.#.totalAmount").Raw)
}

func (s *GraphTestSuite) TestOrderFilters() {
	alice := s.customer("Alice Johnson", "alice@example.com")
	bob := s.customer("Bob Smith", "bob@example.com")
	laptop := s.product("Laptop", "999.99", 10)
	mouse := s.product("Mouse", "19.99", 50)
	old := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)

	s.mustExec(createOrder, map[string]any{"input": map[string]any{"customerId": alice, "productIds": []any{laptop, mouse}}})
	s.mustExec(createOrder, map[string]any{"input": map[string]any{"customerId": bob, "productIds": []any{mouse}, "orderDate": old}})

	const orders = `query($since: DateTime, $customer: String, $product: String, $productId: ID, $min: Decimal, $orderBy: String) {
		orders(orderDateGte: $since, customerName: $customer, productName: $product, productId: $productId, totalAmountGte: $min, orderBy: $orderBy) {
			id customer { email }
		}
	}`
	tests := []struct {
		name string
		vars map[string]any
		want string
	}{
		{"all", nil, `["alice@example.com","bob@example.com"]`},
		{"recent", map[string]any{"since": time.Now().UTC().AddDate(0, 0, -7).Format(time.RFC3339)}, `["alice@example.com"]`},
		{"customer name", map[string]any{"customer": "SMITH"}, `["bob@example.com"]`},
		{"product name", map[string]any{"product": "lap"}, `["alice@example.com"]`},
		{"product id", map[string]any{"productId": mouse}, `["alice@example.com","bob@example.com"]`},
		{"bad product id", map[string]any{"productId": "abc"}, `[]`},
		{"total", map[string]any{"min": "100"}, `["alice@example.com"]`},
		{"descending", map[string]any{"orderBy": "-id"}, `["bob@example.com","alice@example.com"]`},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			data := s.mustExec(orders, tt.vars)
			s.Equal(tt.want, data.Get("orders.#.customer.email").Raw)
		})
	}

	_, errs := s.exec(`{ orders(orderBy: "customer") { id } }`, nil)
	s.Require().Len(errs, 1)
	s.Contains(errs[0], `invalid orderBy "customer"`)
}

func (s *GraphTestSuite) TestCustomerAndProductFilters() {
	s.mustExec(createCustomer, map[string]any{"input": map[string]any{"name": "Alice", "email": "alice@example.com", "phone": "+1234567890"}})
	s.mustExec(createCustomer, map[string]any{"input": map[string]any{"name": "Bob", "email": "bob@example.org", "phone": "123-456-7890"}})
	s.product("Nine", "1.00", 9)
	s.product("Ten", "1.00", 10)
	s.product("Big", "500.00", 100)

	data := s.mustExec(`{ customers(phonePattern: "+1") { name } }`, nil)
	s.Equal(`["Alice"]`, data.Get("customers.#.name").Raw)
	data = s.mustExec(`{ customers(email: ".ORG") { name } }`, nil)
	s.Equal(`["Bob"]`, data.Get("customers.#.name").Raw)
	data = s.mustExec(`{ customers(orderBy: "-name") { name } }`, nil)
	s.Equal(`["Bob","Alice"]`, data.Get("customers.#.name").Raw)

	data = s.mustExec(`{ products(lowStock: true) { name } }`, nil)
	s.Equal(`["Nine"]`, data.Get("products.#.name").Raw)
	data = s.mustExec(`{ products(lowStock: false) { name } }`, nil)
	s.Equal(`["Nine","Ten","Big"]`, data.Get("products.#.name").Raw)
	data = s.mustExec(`{ products(priceGte: "2", stockGte: 50) { name } }`, nil)
	s.Equal(`["Big"]`, data.Get("products.#.name").Raw)
}

func (s *GraphTestSuite) TestUpdateLowStockProducts() {
	s.product("A", "1.00", 3)
	s.product("B", "1.00", 15)
	s.product("C", "1.00", 9)

	const restock = `mutation { updateLowStockProducts { updatedProducts { name stock } message } }`
	data := s.mustExec(restock, nil)
	s.Equal("Restocked 2 low-stock product(s)", data.Get("updateLowStockProducts.message").String())
	s.Equal(`[13,19]`, data.Get("updateLowStockProducts.updatedProducts.#.stock").Raw)

	data = s.mustExec(`{ products { stock } }`, nil)
	s.Equal(`[13,15,19]`, data.Get("products.#.stock").Raw)

	data = s.mustExec(restock, nil)
	s.Equal("Restocked 0 low-stock product(s)", data.Get("updateLowStockProducts.message").String())
}

func TestHandler(t *testing.T) {
	schema, err := NewSchema(crm.NewService(testdb.Open(t), nil))
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(&schema))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"query":"{ hello }"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"data": map[string]any{"hello": Hello}}, body)

	get, err := http.Get(srv.URL + "?query=" + url.QueryEscape("{ products { id } }"))
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	raw := new(strings.Builder)
	_, err = io.Copy(raw, get.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"products":[]}}`, raw.String())
}
