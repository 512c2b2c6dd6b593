package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/repository"
	svcdomain "taller_backend/internal/services/domain"
	svcrepo "taller_backend/internal/services/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/apperr"
	"taller_backend/platform/events"
	"taller_backend/platform/logger"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory double for both repository.Repository and
// repository.Store. Transactions stage their writes and apply them only when
// fn succeeds, mirroring commit/rollback. A per-opportunity mutex stands in
// for the row lock, so concurrent conversions serialize exactly as they do
// against the database.
type memStore struct {
	mu            sync.Mutex
	customers     map[uuid.UUID]custrepo.Customer
	vehicles      map[uuid.UUID]vehrepo.Vehicle
	services      map[uuid.UUID]svcrepo.Service
	opportunities map[uuid.UUID]domain.Oportunidad
	oppLocks      map[uuid.UUID]*sync.Mutex

	failServiceCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		customers:     make(map[uuid.UUID]custrepo.Customer),
		vehicles:      make(map[uuid.UUID]vehrepo.Vehicle),
		services:      make(map[uuid.UUID]svcrepo.Service),
		opportunities: make(map[uuid.UUID]domain.Oportunidad),
		oppLocks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

var (
	_ repository.Repository = (*memStore)(nil)
	_ repository.Store      = (*memStore)(nil)
)

func (m *memStore) lockFor(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.oppLocks[id]
	if !ok {
		l = &sync.Mutex{}
		m.oppLocks[id] = l
	}
	return l
}

func (m *memStore) WithConversion(ctx context.Context, id uuid.UUID, fn func(repository.ConversionTx) error) error {
	rowLock := m.lockFor(id)
	rowLock.Lock()
	defer rowLock.Unlock()

	m.mu.Lock()
	opp, ok := m.opportunities[id]
	m.mu.Unlock()
	if !ok {
		return apperr.NotFound("opportunity not found")
	}

	tx := newMemTx(m, &opp)
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

func (m *memStore) WithIntake(ctx context.Context, fn func(repository.Tx) error) error {
	tx := newMemTx(m, nil)
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// memTx stages writes until apply.
type memTx struct {
	store *memStore
	opp   *domain.Oportunidad

	stagedCustomers     map[uuid.UUID]custrepo.Customer
	stagedVehicles      map[uuid.UUID]vehrepo.Vehicle
	stagedServices      map[uuid.UUID]svcrepo.Service
	stagedOpportunities map[uuid.UUID]domain.Oportunidad
}

func newMemTx(store *memStore, opp *domain.Oportunidad) *memTx {
	return &memTx{
		store:               store,
		opp:                 opp,
		stagedCustomers:     make(map[uuid.UUID]custrepo.Customer),
		stagedVehicles:      make(map[uuid.UUID]vehrepo.Vehicle),
		stagedServices:      make(map[uuid.UUID]svcrepo.Service),
		stagedOpportunities: make(map[uuid.UUID]domain.Oportunidad),
	}
}

func (t *memTx) Oportunidad() domain.Oportunidad {
	return *t.opp
}

func (t *memTx) GetCustomer(ctx context.Context, id uuid.UUID) (custrepo.Customer, error) {
	if c, ok := t.stagedCustomers[id]; ok {
		return c, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c, ok := t.store.customers[id]
	if !ok {
		return custrepo.Customer{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (t *memTx) CreateCustomer(ctx context.Context, params custrepo.CreateParams) (custrepo.Customer, error) {
	c := custrepo.Customer{
		ID:       uuid.New(),
		Nombre:   params.Nombre,
		Telefono: params.Telefono,
		Whatsapp: params.Whatsapp,
		Email:    params.Email,
	}
	t.stagedCustomers[c.ID] = c
	return c, nil
}

func (t *memTx) GetVehicle(ctx context.Context, id uuid.UUID) (vehrepo.Vehicle, error) {
	if v, ok := t.stagedVehicles[id]; ok {
		return v, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	v, ok := t.store.vehicles[id]
	if !ok {
		return vehrepo.Vehicle{}, apperr.NotFound("vehicle not found")
	}
	return v, nil
}

func (t *memTx) CreateVehicle(ctx context.Context, params vehrepo.CreateParams) (vehrepo.Vehicle, error) {
	v := vehrepo.Vehicle{
		ID:          uuid.New(),
		VIN:         params.VIN,
		Marca:       params.Marca,
		Modelo:      params.Modelo,
		Anio:        params.Anio,
		PlacaActual: params.PlacaActual,
		CustomerID:  params.CustomerID,
		Kilometraje: params.Kilometraje,
		Activo:      true,
	}
	t.stagedVehicles[v.ID] = v
	return v, nil
}

func (t *memTx) CreateService(ctx context.Context, params svcrepo.CreateParams) (svcrepo.Service, error) {
	if t.store.failServiceCreate {
		return svcrepo.Service{}, errInjected
	}
	estado := params.Estado
	if estado == "" {
		estado = svcdomain.EstadoCotizado
	}
	s := svcrepo.Service{
		ID:            uuid.New(),
		VehicleID:     params.VehicleID,
		CustomerID:    params.CustomerID,
		MecanicoID:    params.MecanicoID,
		FechaServicio: params.FechaServicio,
		TipoServicio:  params.TipoServicio,
		Descripcion:   params.Descripcion,
		Kilometraje:   params.Kilometraje,
		Precio:        params.Precio,
		Estado:        estado,
	}
	t.stagedServices[s.ID] = s
	return s, nil
}

func (t *memTx) CreateOportunidad(ctx context.Context, params repository.CreateParams) (domain.Oportunidad, error) {
	o := domain.Oportunidad{
		ID:                    uuid.New(),
		VehicleID:             params.VehicleID,
		CustomerID:            params.CustomerID,
		CreadaPor:             params.CreadaPor,
		AsignadaA:             params.AsignadaA,
		TipoOportunidad:       params.TipoOportunidad,
		Titulo:                params.Titulo,
		Descripcion:           params.Descripcion,
		ServicioSugerido:      params.ServicioSugerido,
		PrecioSugerido:        params.PrecioSugerido,
		FechaServicioSugerida: params.FechaServicioSugerida,
		FechaContactoSugerida: params.FechaContactoSugerida,
		Estado:                params.Estado,
		Prioridad:             params.Prioridad,
		Origen:                params.Origen,
		KilometrajeReferencia: params.KilometrajeReferencia,
		Cita:                  params.Cita,
	}
	t.stagedOpportunities[o.ID] = o
	return o, nil
}

func (t *memTx) MarkConverted(ctx context.Context, serviceID uuid.UUID) error {
	if t.opp.ConvertidoAServicioID != nil {
		return apperr.Conflict("opportunity already converted to a service")
	}
	updated := *t.opp
	updated.ConvertidoAServicioID = &serviceID
	updated.Estado = domain.EstadoCompletado
	t.stagedOpportunities[updated.ID] = updated
	return nil
}

func (t *memTx) apply() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, c := range t.stagedCustomers {
		t.store.customers[id] = c
	}
	for id, v := range t.stagedVehicles {
		t.store.vehicles[id] = v
	}
	for id, s := range t.stagedServices {
		t.store.services[id] = s
	}
	for id, o := range t.stagedOpportunities {
		t.store.opportunities[id] = o
	}
}

// Repository surface, mirroring the SQL guards.

func (m *memStore) Create(ctx context.Context, params repository.CreateParams) (domain.Oportunidad, error) {
	tx := newMemTx(m, nil)
	o, err := tx.CreateOportunidad(ctx, params)
	if err != nil {
		return domain.Oportunidad{}, err
	}
	tx.apply()
	return o, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	return o, nil
}

func (m *memStore) List(ctx context.Context, params repository.ListParams) ([]domain.Oportunidad, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.Oportunidad
	for _, o := range m.opportunities {
		items = append(items, o)
	}
	return items, len(items), nil
}

func (m *memStore) UpdateEstado(ctx context.Context, id uuid.UUID, estado domain.Estado, motivoPerdida *string) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	if o.ConvertidoAServicioID != nil {
		return domain.Oportunidad{}, apperr.Conflict("opportunity already converted to a service")
	}
	o.Estado = estado
	if motivoPerdida != nil {
		o.MotivoPerdida = motivoPerdida
	}
	m.opportunities[id] = o
	return o, nil
}

func (m *memStore) UpdatePrioridad(ctx context.Context, id uuid.UUID, prioridad domain.Prioridad) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	o.Prioridad = prioridad
	m.opportunities[id] = o
	return o, nil
}

func (m *memStore) UpdateAsignada(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	o.AsignadaA = userID
	m.opportunities[id] = o
	return o, nil
}

func (m *memStore) RescheduleCita(ctx context.Context, id uuid.UUID, fecha time.Time, hora string) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	if o.ConvertidoAServicioID != nil {
		return domain.Oportunidad{}, apperr.Conflict("opportunity already converted to a service")
	}
	if o.Cita == nil {
		return domain.Oportunidad{}, apperr.Validation("opportunity has no appointment scheduled")
	}
	cita := *o.Cita
	cita.FechaCita = fecha
	cita.HoraCita = hora
	o.Cita = &cita
	m.opportunities[id] = o
	return o, nil
}

func (m *memStore) UpdateIdentidad(ctx context.Context, id uuid.UUID, customerID, vehicleID *uuid.UUID) (domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok {
		return domain.Oportunidad{}, apperr.NotFound("opportunity not found")
	}
	if o.ConvertidoAServicioID != nil {
		return domain.Oportunidad{}, apperr.Conflict("opportunity already converted to a service")
	}
	if customerID != nil {
		o.CustomerID = customerID
	}
	if vehicleID != nil {
		o.VehicleID = vehicleID
	}
	m.opportunities[id] = o
	return o, nil
}

func (m *memStore) ListDueFollowUps(ctx context.Context, on time.Time) ([]domain.Oportunidad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.Oportunidad
	for _, o := range m.opportunities {
		if o.FechaContactoSugerida == nil || o.ConvertidoAServicioID != nil || o.Estado.IsTerminal() {
			continue
		}
		if !o.FechaContactoSugerida.After(on) {
			due = append(due, o)
		}
	}
	return due, nil
}

// Test helpers.

func (m *memStore) addOpportunity(o domain.Oportunidad) domain.Oportunidad {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opportunities[o.ID] = o
	return o
}

func (m *memStore) addCustomer(c custrepo.Customer) custrepo.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return c
}

func (m *memStore) addVehicle(v vehrepo.Vehicle) vehrepo.Vehicle {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
	return v
}

func (m *memStore) counts() (customers, vehicles, services, opportunities int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers), len(m.vehicles), len(m.services), len(m.opportunities)
}

func testCustomer() custrepo.Customer {
	return custrepo.Customer{Nombre: "Cliente de Prueba", Telefono: "+525500001111"}
}

func testVehicle(ownerID *uuid.UUID) vehrepo.Vehicle {
	return vehrepo.Vehicle{Marca: "Nissan", Modelo: "March", Anio: 2018, PlacaActual: "PRU318", CustomerID: ownerID, Activo: true}
}

// fakeBus records published events.
type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *fakeBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(eventName string, handler events.Handler) {}

func (b *fakeBus) published(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			matched = append(matched, e)
		}
	}
	return matched
}

func newTestService(store *memStore, bus *fakeBus) *Service {
	svc := New(store, store, bus, logger.New("test"))
	return svc.WithClock(func() time.Time {
		return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	})
}
