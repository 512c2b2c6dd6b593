package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/domain"
	opprepo "taller_backend/internal/opportunities/repository"
	svcrepo "taller_backend/internal/services/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/apperr"
)

// stubTx backs the resolver with maps. The service/opportunity operations are
// out of the resolver's reach and just error.
type stubTx struct {
	customers map[uuid.UUID]custrepo.Customer
	vehicles  map[uuid.UUID]vehrepo.Vehicle

	createdCustomers []custrepo.CreateParams
	createdVehicles  []vehrepo.CreateParams
}

var _ opprepo.Tx = (*stubTx)(nil)

func newStubTx() *stubTx {
	return &stubTx{
		customers: make(map[uuid.UUID]custrepo.Customer),
		vehicles:  make(map[uuid.UUID]vehrepo.Vehicle),
	}
}

func (t *stubTx) GetCustomer(ctx context.Context, id uuid.UUID) (custrepo.Customer, error) {
	c, ok := t.customers[id]
	if !ok {
		return custrepo.Customer{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (t *stubTx) CreateCustomer(ctx context.Context, params custrepo.CreateParams) (custrepo.Customer, error) {
	t.createdCustomers = append(t.createdCustomers, params)
	c := custrepo.Customer{ID: uuid.New(), Nombre: params.Nombre, Telefono: params.Telefono}
	t.customers[c.ID] = c
	return c, nil
}

func (t *stubTx) GetVehicle(ctx context.Context, id uuid.UUID) (vehrepo.Vehicle, error) {
	v, ok := t.vehicles[id]
	if !ok {
		return vehrepo.Vehicle{}, apperr.NotFound("vehicle not found")
	}
	return v, nil
}

func (t *stubTx) CreateVehicle(ctx context.Context, params vehrepo.CreateParams) (vehrepo.Vehicle, error) {
	t.createdVehicles = append(t.createdVehicles, params)
	v := vehrepo.Vehicle{ID: uuid.New(), Marca: params.Marca, Modelo: params.Modelo, Anio: params.Anio, PlacaActual: params.PlacaActual, CustomerID: params.CustomerID}
	t.vehicles[v.ID] = v
	return v, nil
}

func (t *stubTx) CreateService(ctx context.Context, params svcrepo.CreateParams) (svcrepo.Service, error) {
	return svcrepo.Service{}, errors.New("not supported")
}

func (t *stubTx) CreateOportunidad(ctx context.Context, params opprepo.CreateParams) (domain.Oportunidad, error) {
	return domain.Oportunidad{}, errors.New("not supported")
}

func TestResolveCustomer_ExistingID(t *testing.T) {
	tx := newStubTx()
	existing := custrepo.Customer{ID: uuid.New(), Nombre: "Carla", Telefono: "+525511112222"}
	tx.customers[existing.ID] = existing

	c, created, err := ResolveCustomer(context.Background(), tx, CustomerRef{ID: &existing.ID}, nil)
	if err != nil {
		t.Fatalf("ResolveCustomer: %v", err)
	}
	if created {
		t.Error("existing-id path must not report creation")
	}
	if c.ID != existing.ID {
		t.Errorf("resolved %s, want %s", c.ID, existing.ID)
	}
}

func TestResolveCustomer_ExistingIDNotFound(t *testing.T) {
	tx := newStubTx()
	missing := uuid.New()

	_, _, err := ResolveCustomer(context.Background(), tx, CustomerRef{ID: &missing}, nil)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestResolveCustomer_NewPayloadNormalizesPhone(t *testing.T) {
	tx := newStubTx()

	c, created, err := ResolveCustomer(context.Background(), tx, CustomerRef{
		New: &NewCustomer{Nombre: "Jorge", Telefono: "5512345678"},
	}, nil)
	if err != nil {
		t.Fatalf("ResolveCustomer: %v", err)
	}
	if !created {
		t.Error("new-payload path must report creation")
	}
	if c.Telefono != "+525512345678" {
		t.Errorf("telefono = %q, want E.164 +525512345678", c.Telefono)
	}
	if len(tx.createdCustomers) != 1 {
		t.Errorf("created %d customers, want 1", len(tx.createdCustomers))
	}
}

func TestResolveCustomer_NewPayloadMissingFields(t *testing.T) {
	tx := newStubTx()

	_, _, err := ResolveCustomer(context.Background(), tx, CustomerRef{New: &NewCustomer{}}, nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("err is not *apperr.Error")
	}
	details, ok := appErr.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T, want field map", appErr.Details)
	}
	if !reflect.DeepEqual(details["fields"], []string{"nombre", "telefono"}) {
		t.Errorf("fields = %v, want [nombre telefono]", details["fields"])
	}
	if len(tx.createdCustomers) != 0 {
		t.Error("invalid payload must not create a row")
	}
}

func TestResolveCustomer_FallbackPath(t *testing.T) {
	tx := newStubTx()
	attached := custrepo.Customer{ID: uuid.New(), Nombre: "Dueño Previo", Telefono: "+525533334444"}
	tx.customers[attached.ID] = attached

	c, created, err := ResolveCustomer(context.Background(), tx, CustomerRef{}, &attached.ID)
	if err != nil {
		t.Fatalf("ResolveCustomer: %v", err)
	}
	if created || c.ID != attached.ID {
		t.Errorf("fallback resolved (%s, created=%v), want attached customer", c.ID, created)
	}
}

func TestResolveCustomer_NothingToResolve(t *testing.T) {
	tx := newStubTx()

	_, _, err := ResolveCustomer(context.Background(), tx, CustomerRef{}, nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestResolveVehicle_NewPayloadLinksOwner(t *testing.T) {
	tx := newStubTx()
	owner := custrepo.Customer{ID: uuid.New(), Nombre: "Dueña", Telefono: "+525555556666"}

	v, created, err := ResolveVehicle(context.Background(), tx, VehicleRef{
		New: &NewVehicle{Marca: "Toyota", Modelo: "Hilux", Anio: 2022, PlacaActual: "HLX222"},
	}, nil, owner)
	if err != nil {
		t.Fatalf("ResolveVehicle: %v", err)
	}
	if !created {
		t.Error("new-payload path must report creation")
	}
	if v.CustomerID == nil || *v.CustomerID != owner.ID {
		t.Errorf("vehicle owner = %v, want %s", v.CustomerID, owner.ID)
	}
}

func TestResolveVehicle_NewPayloadMissingFields(t *testing.T) {
	tx := newStubTx()

	_, _, err := ResolveVehicle(context.Background(), tx, VehicleRef{
		New: &NewVehicle{Marca: "Toyota"},
	}, nil, custrepo.Customer{ID: uuid.New()})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("err is not *apperr.Error")
	}
	details := appErr.Details.(map[string]interface{})
	if !reflect.DeepEqual(details["fields"], []string{"modelo", "anio", "placa_actual"}) {
		t.Errorf("fields = %v, want [modelo anio placa_actual]", details["fields"])
	}
}

func TestResolveVehicle_FallbackPath(t *testing.T) {
	tx := newStubTx()
	ownerID := uuid.New()
	attached := vehrepo.Vehicle{ID: uuid.New(), Marca: "Mazda", Modelo: "2", Anio: 2016, PlacaActual: "MZD216", CustomerID: &ownerID}
	tx.vehicles[attached.ID] = attached

	v, created, err := ResolveVehicle(context.Background(), tx, VehicleRef{}, &attached.ID, custrepo.Customer{ID: ownerID})
	if err != nil {
		t.Fatalf("ResolveVehicle: %v", err)
	}
	if created || v.ID != attached.ID {
		t.Errorf("fallback resolved (%s, created=%v), want attached vehicle", v.ID, created)
	}
}

func TestResolveVehicle_NothingToResolve(t *testing.T) {
	tx := newStubTx()

	_, _, err := ResolveVehicle(context.Background(), tx, VehicleRef{}, nil, custrepo.Customer{ID: uuid.New()})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}
