package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/apperr"
)

func TestProcessWalkIn_ServicioInmediato(t *testing.T) {
	store := newMemStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)

	descripcion := "Cambio de aceite y filtro"
	precio := int64(50000)
	resp, err := svc.ProcessWalkIn(context.Background(), uuid.New(), transport.WalkInRequest{
		Accion:       "servicio_inmediato",
		ClienteNuevo: &transport.NewCustomerPayload{Nombre: "Ana", Telefono: "+5215512345678"},
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "Toyota", Modelo: "Corolla", Anio: 2020, PlacaActual: "ABC123",
		},
		ServicioInmediato: &transport.ServicioInmediatoPayload{
			TipoServicio:   "Cambio de aceite",
			Descripcion:    &descripcion,
			PrecioEstimado: &precio,
		},
	})
	if err != nil {
		t.Fatalf("ProcessWalkIn: %v", err)
	}

	customers, vehicles, services, opportunities := store.counts()
	if customers != 1 || vehicles != 1 || services != 1 || opportunities != 0 {
		t.Fatalf("row counts = (%d, %d, %d, %d), want (1, 1, 1, 0)", customers, vehicles, services, opportunities)
	}

	if resp.Servicio == nil {
		t.Fatal("expected a service in the response")
	}
	if resp.Oportunidad != nil {
		t.Error("servicio_inmediato must not create an opportunity")
	}
	if resp.Servicio.CustomerID != resp.Cliente.ID || resp.Servicio.VehicleID != resp.Vehiculo.ID {
		t.Errorf("service identity does not match the created customer/vehicle")
	}
	if resp.Vehiculo.CustomerID == nil || *resp.Vehiculo.CustomerID != resp.Cliente.ID {
		t.Errorf("vehicle owner = %v, want the created customer", resp.Vehiculo.CustomerID)
	}
	if resp.Servicio.Precio != precio {
		t.Errorf("precio = %d, want %d", resp.Servicio.Precio, precio)
	}
	if resp.Servicio.Estado != "cotizado" {
		t.Errorf("estado = %q, want cotizado", resp.Servicio.Estado)
	}

	if got := bus.published("oportunidades.walkin.procesado"); len(got) != 1 {
		t.Errorf("published %d walk-in events, want 1", len(got))
	}
}

func TestProcessWalkIn_AgendarCita(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	breve := "Ruido en la dirección"
	resp, err := svc.ProcessWalkIn(context.Background(), uuid.New(), transport.WalkInRequest{
		Accion:       "agendar_cita",
		ClienteNuevo: &transport.NewCustomerPayload{Nombre: "Luis", Telefono: "5587654321"},
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "Chevrolet", Modelo: "Aveo", Anio: 2017, PlacaActual: "AVO217",
		},
		Cita: &transport.CitaPayload{
			FechaCita:        "2025-06-20",
			HoraCita:         "11:00",
			DescripcionBreve: &breve,
		},
	})
	if err != nil {
		t.Fatalf("ProcessWalkIn: %v", err)
	}

	if resp.Servicio != nil {
		t.Error("agendar_cita must not create a service")
	}
	if resp.Oportunidad == nil {
		t.Fatal("expected an opportunity in the response")
	}

	opp := resp.Oportunidad
	if opp.Estado != "agendado" {
		t.Errorf("estado = %q, want agendado", opp.Estado)
	}
	if opp.Origen != "walk_in" {
		t.Errorf("origen = %q, want walk_in", opp.Origen)
	}
	if opp.Cita == nil {
		t.Fatal("expected cita data on the opportunity")
	}
	if opp.Cita.TipoCita != "cita_completa" {
		t.Errorf("tipo_cita = %q, want cita_completa", opp.Cita.TipoCita)
	}
	if opp.Cita.FechaCita != "2025-06-20" || opp.Cita.HoraCita != "11:00" {
		t.Errorf("cita = %s %s, want 2025-06-20 11:00", opp.Cita.FechaCita, opp.Cita.HoraCita)
	}
	if opp.CustomerID == nil || *opp.CustomerID != resp.Cliente.ID {
		t.Errorf("opportunity customer = %v, want the created customer", opp.CustomerID)
	}
	if opp.VehicleID == nil || *opp.VehicleID != resp.Vehiculo.ID {
		t.Errorf("opportunity vehicle = %v, want the created vehicle", opp.VehicleID)
	}
}

func TestProcessWalkIn_ExistingCustomerNewVehicle(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	cust := store.addCustomer(custrepo.Customer{Nombre: "Regresa Seguido", Telefono: "+525510101010"})

	resp, err := svc.ProcessWalkIn(context.Background(), uuid.New(), transport.WalkInRequest{
		Accion:    "servicio_inmediato",
		ClienteID: &cust.ID,
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "Seat", Modelo: "Ibiza", Anio: 2019, PlacaActual: "SEA190",
		},
		ServicioInmediato: &transport.ServicioInmediatoPayload{TipoServicio: "Diagnóstico"},
	})
	if err != nil {
		t.Fatalf("ProcessWalkIn: %v", err)
	}

	customers, _, _, _ := store.counts()
	if customers != 1 {
		t.Errorf("customer rows = %d, want 1 (no duplicate)", customers)
	}
	if resp.Cliente.ID != cust.ID {
		t.Errorf("resolved customer = %s, want existing %s", resp.Cliente.ID, cust.ID)
	}
}

func TestProcessWalkIn_MissingBranchDetails(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	base := transport.WalkInRequest{
		ClienteNuevo: &transport.NewCustomerPayload{Nombre: "X", Telefono: "5511111111"},
		VehiculoNuevo: &transport.NewVehiclePayload{
			Marca: "Fiat", Modelo: "Mobi", Anio: 2024, PlacaActual: "MOB240",
		},
	}

	tests := []struct {
		name   string
		accion string
	}{
		{"servicio_inmediato without details", "servicio_inmediato"},
		{"agendar_cita without cita", "agendar_cita"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.Accion = tt.accion
			_, err := svc.ProcessWalkIn(context.Background(), uuid.New(), req)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want Validation", err)
			}
		})
	}

	customers, vehicles, services, opportunities := store.counts()
	if customers+vehicles+services+opportunities != 0 {
		t.Errorf("rows created despite validation failure: (%d, %d, %d, %d)", customers, vehicles, services, opportunities)
	}
}

func TestProcessWalkIn_IncompleteVehicleRollsBackCustomer(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	_, err := svc.ProcessWalkIn(context.Background(), uuid.New(), transport.WalkInRequest{
		Accion:            "servicio_inmediato",
		ClienteNuevo:      &transport.NewCustomerPayload{Nombre: "Solo Cliente", Telefono: "5522222222"},
		VehiculoNuevo:     &transport.NewVehiclePayload{Marca: "Dodge"},
		ServicioInmediato: &transport.ServicioInmediatoPayload{TipoServicio: "Lavado"},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}

	customers, _, _, _ := store.counts()
	if customers != 0 {
		t.Errorf("customer rows = %d, want 0 after rollback", customers)
	}
}

func TestProcessWalkIn_UnknownAccion(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	_, err := svc.ProcessWalkIn(context.Background(), uuid.New(), transport.WalkInRequest{Accion: "venta_directa"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}
