package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/transport"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/apperr"
)

func seedConvertible(store *memStore) (custrepo.Customer, vehrepo.Vehicle, domain.Oportunidad) {
	cust := store.addCustomer(custrepo.Customer{Nombre: "Laura Méndez", Telefono: "+525512345678"})
	veh := store.addVehicle(vehrepo.Vehicle{Marca: "Nissan", Modelo: "Versa", Anio: 2019, PlacaActual: "XYZ987", CustomerID: &cust.ID})

	sugerido := "Afinación mayor"
	precio := int64(250000)
	km := int64(78000)
	opp := store.addOpportunity(domain.Oportunidad{
		CustomerID:            &cust.ID,
		VehicleID:             &veh.ID,
		CreadaPor:             uuid.New(),
		TipoOportunidad:       "mantenimiento",
		Titulo:                "Afinación",
		ServicioSugerido:      &sugerido,
		PrecioSugerido:        &precio,
		KilometrajeReferencia: &km,
		Estado:                domain.EstadoAgendado,
		Prioridad:             domain.PrioridadMedia,
		Origen:                domain.OrigenManual,
	})
	return cust, veh, opp
}

func TestConvertToService_InheritsOpportunityDefaults(t *testing.T) {
	store := newMemStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)
	cust, veh, opp := seedConvertible(store)

	resp, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{})
	if err != nil {
		t.Fatalf("ConvertToService: %v", err)
	}

	if resp.Servicio.TipoServicio != "Afinación mayor" {
		t.Errorf("tipo_servicio = %q, want servicio_sugerido", resp.Servicio.TipoServicio)
	}
	if resp.Servicio.Precio != 250000 {
		t.Errorf("precio = %d, want 250000", resp.Servicio.Precio)
	}
	if resp.Servicio.Kilometraje == nil || *resp.Servicio.Kilometraje != 78000 {
		t.Errorf("kilometraje = %v, want 78000", resp.Servicio.Kilometraje)
	}
	if resp.Servicio.Estado != "cotizado" {
		t.Errorf("estado = %q, want cotizado", resp.Servicio.Estado)
	}
	if resp.Servicio.CustomerID != cust.ID || resp.Servicio.VehicleID != veh.ID {
		t.Errorf("service identity = (%s, %s), want (%s, %s)",
			resp.Servicio.CustomerID, resp.Servicio.VehicleID, cust.ID, veh.ID)
	}
	if resp.CreatedCustomerID != nil || resp.CreatedVehicleID != nil {
		t.Errorf("expected no inline-created rows, got %v / %v", resp.CreatedCustomerID, resp.CreatedVehicleID)
	}

	converted, _ := store.GetByID(context.Background(), opp.ID)
	if converted.ConvertidoAServicioID == nil || *converted.ConvertidoAServicioID != resp.Servicio.ID {
		t.Fatalf("convertido_a_servicio_id = %v, want %s", converted.ConvertidoAServicioID, resp.Servicio.ID)
	}
	if converted.Estado != domain.EstadoCompletado {
		t.Errorf("estado after conversion = %s, want completado", converted.Estado)
	}

	if got := bus.published("oportunidades.convertida"); len(got) != 1 {
		t.Errorf("published %d convertida events, want 1", len(got))
	}
}

func TestConvertToService_OverridesWin(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)

	tipo := "Cambio de frenos"
	descripcion := "Balatas delanteras y traseras"
	precio := int64(180000)
	resp, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{
		TipoServicio: &tipo,
		Descripcion:  &descripcion,
		Precio:       &precio,
	})
	if err != nil {
		t.Fatalf("ConvertToService: %v", err)
	}

	if resp.Servicio.TipoServicio != tipo {
		t.Errorf("tipo_servicio = %q, want override", resp.Servicio.TipoServicio)
	}
	if resp.Servicio.Precio != precio {
		t.Errorf("precio = %d, want override %d", resp.Servicio.Precio, precio)
	}
	if resp.Servicio.Descripcion == nil || *resp.Servicio.Descripcion != descripcion {
		t.Errorf("descripcion = %v, want override", resp.Servicio.Descripcion)
	}
}

func TestConvertToService_NotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	_, err := svc.ConvertToService(context.Background(), uuid.New(), transport.ConvertRequest{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestConvertToService_AlreadyConverted(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)

	if _, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{}); err != nil {
		t.Fatalf("first conversion: %v", err)
	}

	_, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second conversion err = %v, want Conflict", err)
	}

	_, _, services, _ := store.counts()
	if services != 1 {
		t.Errorf("service rows = %d, want 1", services)
	}
}

func TestConvertToService_LostOpportunity(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)

	motivo := "cliente no respondió"
	if _, err := store.UpdateEstado(context.Background(), opp.ID, domain.EstadoPerdido, &motivo); err != nil {
		t.Fatalf("seed perdido: %v", err)
	}

	_, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want Conflict", err)
	}
}

func TestConvertToService_InlineCustomerAndVehicle(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	opp := store.addOpportunity(domain.Oportunidad{
		CreadaPor:       uuid.New(),
		TipoOportunidad: "mantenimiento",
		Titulo:          "Servicio general",
		Estado:          domain.EstadoPendiente,
		Prioridad:       domain.PrioridadMedia,
		Origen:          domain.OrigenManual,
	})

	resp, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{
		ClienteNuevo: &transport.NewCustomerPayload{Nombre: "Mario Ruiz", Telefono: "5522334455"},
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "Ford", Modelo: "Ranger", Anio: 2021, PlacaActual: "JKL456",
		},
	})
	if err != nil {
		t.Fatalf("ConvertToService: %v", err)
	}

	if resp.CreatedCustomerID == nil || resp.CreatedVehicleID == nil {
		t.Fatalf("expected created ids, got %v / %v", resp.CreatedCustomerID, resp.CreatedVehicleID)
	}

	customers, vehicles, services, _ := store.counts()
	if customers != 1 || vehicles != 1 || services != 1 {
		t.Fatalf("row counts = (%d, %d, %d), want (1, 1, 1)", customers, vehicles, services)
	}

	store.mu.Lock()
	veh := store.vehicles[*resp.CreatedVehicleID]
	store.mu.Unlock()
	if veh.CustomerID == nil || *veh.CustomerID != *resp.CreatedCustomerID {
		t.Errorf("inline vehicle owner = %v, want the inline-created customer", veh.CustomerID)
	}
}

func TestConvertToService_ExistingCustomerNeverDuplicated(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	cust, _, opp := seedConvertible(store)

	if _, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{ClienteID: &cust.ID}); err != nil {
		t.Fatalf("ConvertToService: %v", err)
	}

	customers, _, _, _ := store.counts()
	if customers != 1 {
		t.Errorf("customer rows = %d, want 1", customers)
	}
}

func TestConvertToService_MissingIdentityFails(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	opp := store.addOpportunity(domain.Oportunidad{
		CreadaPor:       uuid.New(),
		TipoOportunidad: "mantenimiento",
		Titulo:          "Sin identidad",
		Estado:          domain.EstadoPendiente,
		Prioridad:       domain.PrioridadBaja,
		Origen:          domain.OrigenManual,
	})

	_, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}

	_, _, services, _ := store.counts()
	if services != 0 {
		t.Errorf("service rows = %d, want 0", services)
	}
}

func TestConvertToService_RollbackLeavesNothingBehind(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)
	store.failServiceCreate = true

	_, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{
		ClienteNuevo: &transport.NewCustomerPayload{Nombre: "Nadie", Telefono: "5500000000"},
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "VW", Modelo: "Jetta", Anio: 2018, PlacaActual: "ROL111",
		},
	})
	if err == nil {
		t.Fatal("expected the injected failure to propagate")
	}

	customers, vehicles, services, _ := store.counts()
	if customers != 1 || vehicles != 1 || services != 0 {
		t.Fatalf("row counts after rollback = (%d, %d, %d), want the seeded (1, 1, 0)", customers, vehicles, services)
	}

	after, _ := store.GetByID(context.Background(), opp.ID)
	if after.ConvertidoAServicioID != nil {
		t.Errorf("opportunity marked converted despite rollback")
	}
	if after.Estado != domain.EstadoAgendado {
		t.Errorf("estado = %s, want unchanged agendado", after.Estado)
	}
}

func TestConvertToService_ConcurrentCallersAtMostOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)

	const callers = 16
	var successes, conflicts atomic.Int32

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := svc.ConvertToService(context.Background(), opp.ID, transport.ConvertRequest{})
			switch {
			case err == nil:
				successes.Add(1)
			case apperr.Is(err, apperr.KindConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error from concurrent caller: %v", err)
	}

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want exactly 1", successes.Load())
	}
	if conflicts.Load() != callers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts.Load(), callers-1)
	}

	_, _, services, _ := store.counts()
	if services != 1 {
		t.Errorf("service rows = %d, want exactly 1", services)
	}

	after, _ := store.GetByID(context.Background(), opp.ID)
	if after.ConvertidoAServicioID == nil {
		t.Fatal("winner did not record its service id")
	}
	store.mu.Lock()
	_, exists := store.services[*after.ConvertidoAServicioID]
	store.mu.Unlock()
	if !exists {
		t.Error("convertido_a_servicio_id points at a service that does not exist")
	}
}
