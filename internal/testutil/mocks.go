package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = uuid.New()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

func (m *MockUserRepository) Update(user *domain.User) (*domain.User, error) {
	if _, ok := m.ByID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockStoreRepository is a mock implementation of domain.StoreRepository
type MockStoreRepository struct {
	Stores         map[int32]*domain.Store
	ByOwnerID      map[uuid.UUID]*domain.Store
	ByOwnerAuth0ID map[string]*domain.Store
	NextID         int32
}

// NewMockStoreRepository creates a new MockStoreRepository
func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{
		Stores:         make(map[int32]*domain.Store),
		ByOwnerID:      make(map[uuid.UUID]*domain.Store),
		ByOwnerAuth0ID: make(map[string]*domain.Store),
		NextID:         1,
	}
}

func (m *MockStoreRepository) GetByID(id int32) (*domain.Store, error) {
	if store, ok := m.Stores[id]; ok {
		return store, nil
	}
	return nil, domain.ErrStoreNotFound
}

func (m *MockStoreRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Store, error) {
	if store, ok := m.ByOwnerID[ownerID]; ok {
		return store, nil
	}
	return nil, domain.ErrStoreNotFound
}

func (m *MockStoreRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Store, error) {
	if store, ok := m.ByOwnerAuth0ID[auth0ID]; ok {
		return store, nil
	}
	return nil, domain.ErrStoreNotFound
}

func (m *MockStoreRepository) Create(store *domain.Store) (*domain.Store, error) {
	store.ID = m.NextID
	m.NextID++
	m.Stores[store.ID] = store
	m.ByOwnerID[store.OwnerID] = store
	return store, nil
}

func (m *MockStoreRepository) Update(store *domain.Store) (*domain.Store, error) {
	if _, ok := m.Stores[store.ID]; !ok {
		return nil, domain.ErrStoreNotFound
	}
	m.Stores[store.ID] = store
	m.ByOwnerID[store.OwnerID] = store
	return store, nil
}

// AddStore adds a store with an owner Auth0 ID (helper for tests)
func (m *MockStoreRepository) AddStore(store *domain.Store, auth0ID string) {
	m.Stores[store.ID] = store
	m.ByOwnerID[store.OwnerID] = store
	if auth0ID != "" {
		m.ByOwnerAuth0ID[auth0ID] = store
	}
}

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers map[uuid.UUID]*domain.Customer
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		Customers: make(map[uuid.UUID]*domain.Customer),
	}
}

func (m *MockCustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	customer.ID = uuid.New()
	customer.CreatedAt = time.Now()
	m.Customers[customer.ID] = customer
	return customer, nil
}

func (m *MockCustomerRepository) GetByID(storeID int32, id uuid.UUID) (*domain.Customer, error) {
	customer, ok := m.Customers[id]
	if !ok || customer.StoreID != storeID {
		return nil, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (m *MockCustomerRepository) GetAllByStore(storeID int32) ([]*domain.Customer, error) {
	result := make([]*domain.Customer, 0)
	for _, c := range m.Customers {
		if c.StoreID == storeID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	if _, ok := m.Customers[customer.ID]; !ok {
		return nil, domain.ErrCustomerNotFound
	}
	m.Customers[customer.ID] = customer
	return customer, nil
}

// AddCustomer adds a customer to the mock repository (helper for tests)
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.Customers[customer.ID] = customer
}

// MockPlanRepository is a mock implementation of domain.InstallmentPlanRepository
type MockPlanRepository struct {
	Plans  map[int32]*domain.InstallmentPlan
	NextID int32
}

// NewMockPlanRepository creates a new MockPlanRepository
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		Plans:  make(map[int32]*domain.InstallmentPlan),
		NextID: 1,
	}
}

func (m *MockPlanRepository) Create(plan *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	plan.ID = m.NextID
	m.NextID++
	plan.CreatedAt = time.Now()
	m.Plans[plan.ID] = plan
	return plan, nil
}

func (m *MockPlanRepository) GetByID(storeID int32, id int32) (*domain.InstallmentPlan, error) {
	plan, ok := m.Plans[id]
	if !ok || plan.StoreID != storeID {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (m *MockPlanRepository) GetAllByStore(storeID int32) ([]*domain.InstallmentPlan, error) {
	result := make([]*domain.InstallmentPlan, 0)
	for _, p := range m.Plans {
		if p.StoreID == storeID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPlanRepository) GetActiveByStore(storeID int32) ([]*domain.InstallmentPlan, error) {
	result := make([]*domain.InstallmentPlan, 0)
	for _, p := range m.Plans {
		if p.StoreID == storeID && p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPlanRepository) Update(plan *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	if _, ok := m.Plans[plan.ID]; !ok {
		return nil, domain.ErrPlanNotFound
	}
	m.Plans[plan.ID] = plan
	return plan, nil
}

func (m *MockPlanRepository) Deactivate(storeID int32, id int32) error {
	plan, ok := m.Plans[id]
	if !ok || plan.StoreID != storeID {
		return domain.ErrPlanNotFound
	}
	plan.Active = false
	return nil
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockPlanRepository) AddPlan(plan *domain.InstallmentPlan) {
	m.Plans[plan.ID] = plan
	if plan.ID >= m.NextID {
		m.NextID = plan.ID + 1
	}
}

// MockContractRepository is a mock implementation of domain.InstallmentContractRepository
type MockContractRepository struct {
	Contracts map[int32]*domain.InstallmentContract
	NextID    int32
}

// NewMockContractRepository creates a new MockContractRepository
func NewMockContractRepository() *MockContractRepository {
	return &MockContractRepository{
		Contracts: make(map[int32]*domain.InstallmentContract),
		NextID:    1,
	}
}

func (m *MockContractRepository) CreateTx(tx any, contract *domain.InstallmentContract) (*domain.InstallmentContract, error) {
	contract.ID = m.NextID
	m.NextID++
	contract.CreatedAt = time.Now()
	m.Contracts[contract.ID] = contract
	return contract, nil
}

func (m *MockContractRepository) GetByID(storeID int32, id int32) (*domain.InstallmentContract, error) {
	contract, ok := m.Contracts[id]
	if !ok || contract.StoreID != storeID {
		return nil, domain.ErrContractNotFound
	}
	return contract, nil
}

func (m *MockContractRepository) GetAllByStore(storeID int32) ([]*domain.InstallmentContract, error) {
	result := make([]*domain.InstallmentContract, 0)
	for _, c := range m.Contracts {
		if c.StoreID == storeID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockContractRepository) GetByCustomer(storeID int32, customerID uuid.UUID) ([]*domain.InstallmentContract, error) {
	result := make([]*domain.InstallmentContract, 0)
	for _, c := range m.Contracts {
		if c.StoreID == storeID && c.CustomerID == customerID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockContractRepository) UpdateStatus(storeID int32, id int32, status domain.ContractStatus, at time.Time) error {
	contract, ok := m.Contracts[id]
	if !ok || contract.StoreID != storeID {
		return domain.ErrContractNotFound
	}
	contract.Status = status
	contract.UpdatedAt = at
	if status == domain.ContractStatusCancelled {
		contract.CancelledAt = &at
	}
	return nil
}

func (m *MockContractRepository) UpdateStatusTx(tx any, id int32, status domain.ContractStatus, at time.Time) error {
	contract, ok := m.Contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	contract.Status = status
	contract.UpdatedAt = at
	return nil
}

// AddContract adds a contract to the mock repository (helper for tests)
func (m *MockContractRepository) AddContract(contract *domain.InstallmentContract) {
	m.Contracts[contract.ID] = contract
	if contract.ID >= m.NextID {
		m.NextID = contract.ID + 1
	}
}

// MockPaymentRepository is a mock implementation of domain.InstallmentPaymentRepository
type MockPaymentRepository struct {
	Payments map[int32]*domain.InstallmentPayment
	Overdue  []*domain.OverdueNotice
	NextID   int32
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[int32]*domain.InstallmentPayment),
		NextID:   1,
	}
}

func (m *MockPaymentRepository) CreateBatchTx(tx any, payments []*domain.InstallmentPayment) error {
	for _, p := range payments {
		p.ID = m.NextID
		m.NextID++
		p.CreatedAt = time.Now()
		m.Payments[p.ID] = p
	}
	return nil
}

func (m *MockPaymentRepository) GetByContractID(contractID int32) ([]*domain.InstallmentPayment, error) {
	result := make([]*domain.InstallmentPayment, 0)
	for _, p := range m.Payments {
		if p.ContractID == contractID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) GetByStore(storeID int32) (map[int32][]*domain.InstallmentPayment, error) {
	// The mock has no store scoping on payments; group everything by contract
	result := make(map[int32][]*domain.InstallmentPayment)
	for _, p := range m.Payments {
		result[p.ContractID] = append(result[p.ContractID], p)
	}
	return result, nil
}

func (m *MockPaymentRepository) GetByContractAndNumber(contractID int32, installmentNumber int32) (*domain.InstallmentPayment, error) {
	for _, p := range m.Payments {
		if p.ContractID == contractID && p.InstallmentNumber == installmentNumber {
			return p, nil
		}
	}
	return nil, domain.ErrInstallmentNotFound
}

func (m *MockPaymentRepository) MarkPaidTx(tx any, id int32, paidDate time.Time, lateFee, amountPaid decimal.Decimal) error {
	payment, ok := m.Payments[id]
	if !ok {
		return domain.ErrInstallmentNotFound
	}
	if payment.Paid {
		return domain.ErrPaymentAlreadyRecorded
	}
	payment.Paid = true
	payment.PaidDate = &paidDate
	payment.LateFeePaid = lateFee
	payment.AmountPaid = amountPaid
	return nil
}

func (m *MockPaymentRepository) GetNewlyOverdue(asOf time.Time, window time.Duration) ([]*domain.OverdueNotice, error) {
	return m.Overdue, nil
}

func (m *MockPaymentRepository) SumCollectedSince(storeID int32, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.Payments {
		if p.Paid && p.PaidDate != nil && !p.PaidDate.Before(since) {
			total = total.Add(p.AmountPaid)
		}
	}
	return total, nil
}

// AddPayment adds a payment to the mock repository (helper for tests)
func (m *MockPaymentRepository) AddPayment(payment *domain.InstallmentPayment) {
	m.Payments[payment.ID] = payment
	if payment.ID >= m.NextID {
		m.NextID = payment.ID + 1
	}
}

// MockAPITokenRepository is a mock implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	Tokens map[uuid.UUID]*domain.APIToken
	ByHash map[string]*domain.APIToken
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{
		Tokens: make(map[uuid.UUID]*domain.APIToken),
		ByHash: make(map[string]*domain.APIToken),
	}
}

func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) (*domain.APIToken, error) {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	m.Tokens[token.ID] = token
	m.ByHash[token.TokenHash] = token
	return token, nil
}

func (m *MockAPITokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	if token, ok := m.ByHash[tokenHash]; ok {
		return token, nil
	}
	return nil, domain.ErrAPITokenNotFound
}

func (m *MockAPITokenRepository) GetAllByStore(ctx context.Context, storeID int32) ([]*domain.APIToken, error) {
	result := make([]*domain.APIToken, 0)
	for _, t := range m.Tokens {
		if t.StoreID == storeID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	token, ok := m.Tokens[id]
	if !ok {
		return domain.ErrAPITokenNotFound
	}
	token.LastUsedAt = &at
	return nil
}

func (m *MockAPITokenRepository) Revoke(ctx context.Context, storeID int32, id uuid.UUID) error {
	token, ok := m.Tokens[id]
	if !ok || token.StoreID != storeID {
		return domain.ErrAPITokenNotFound
	}
	delete(m.Tokens, id)
	delete(m.ByHash, token.TokenHash)
	return nil
}
