package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/apperr"
)

func TestCreate_PlainLeadStartsPendiente(t *testing.T) {
	store := newMemStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateOpportunityRequest{
		TipoOportunidad: "mantenimiento",
		Titulo:          "Cambio de bujías",
		Origen:          "manual",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Estado != "pendiente" {
		t.Errorf("estado = %q, want pendiente", resp.Estado)
	}
	if resp.Prioridad != "media" {
		t.Errorf("prioridad = %q, want default media", resp.Prioridad)
	}
	if resp.Cita != nil {
		t.Error("plain lead must not carry cita data")
	}
	if got := bus.published("oportunidades.creada"); len(got) != 1 {
		t.Errorf("published %d creada events, want 1", len(got))
	}
}

func TestCreate_WithCitaStartsAgendado(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateOpportunityRequest{
		TipoOportunidad: "cita",
		Titulo:          "Cita rápida telefónica",
		Origen:          "llamada_cliente",
		Cita: &transport.CitaPayload{
			FechaCita: "2025-07-01",
			HoraCita:  "16:30",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Estado != "agendado" {
		t.Errorf("estado = %q, want agendado when a cita is supplied", resp.Estado)
	}
	if resp.Cita == nil {
		t.Fatal("expected cita data")
	}
	if resp.Cita.TipoCita != "cita_rapida" {
		t.Errorf("tipo_cita = %q, want cita_rapida without identity", resp.Cita.TipoCita)
	}
}

func TestUpdateEstado_LegalAndIllegalTransitions(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store) // agendado

	if _, err := svc.UpdateEstado(context.Background(), opp.ID, transport.UpdateEstadoRequest{Estado: "en_proceso"}); err != nil {
		t.Fatalf("agendado → en_proceso: %v", err)
	}

	_, err := svc.UpdateEstado(context.Background(), opp.ID, transport.UpdateEstadoRequest{Estado: "pendiente"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("backward transition err = %v, want Conflict", err)
	}
}

func TestUpdateEstado_PerdidoRequiresMotivo(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	_, _, opp := seedConvertible(store)

	_, err := svc.UpdateEstado(context.Background(), opp.ID, transport.UpdateEstadoRequest{Estado: "perdido"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestCancel_SetsPerdidoWithMotivo(t *testing.T) {
	store := newMemStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)
	_, _, opp := seedConvertible(store)

	resp, err := svc.Cancel(context.Background(), opp.ID, "el cliente vendió el auto")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if resp.Estado != "perdido" {
		t.Errorf("estado = %q, want perdido", resp.Estado)
	}
	if resp.MotivoPerdida == nil || *resp.MotivoPerdida != "el cliente vendió el auto" {
		t.Errorf("motivo_perdida = %v", resp.MotivoPerdida)
	}
	if got := bus.published("oportunidades.cancelada"); len(got) != 1 {
		t.Errorf("published %d cancelada events, want 1", len(got))
	}
}

func TestReschedule_MovesCitaInPlace(t *testing.T) {
	store := newMemStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)

	cust := store.addCustomer(testCustomer())
	opp := seedScheduledCita(store, &cust.ID, nil)

	resp, err := svc.Reschedule(context.Background(), opp.ID, transport.RescheduleRequest{
		FechaCita: "2025-06-22",
		HoraCita:  "13:15",
	})
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if resp.Estado != "agendado" {
		t.Errorf("estado = %q, reschedule must not change estado", resp.Estado)
	}
	if resp.Cita.FechaCita != "2025-06-22" || resp.Cita.HoraCita != "13:15" {
		t.Errorf("cita = %s %s, want 2025-06-22 13:15", resp.Cita.FechaCita, resp.Cita.HoraCita)
	}
	if got := bus.published("oportunidades.cita.reagendada"); len(got) != 1 {
		t.Errorf("published %d reagendada events, want 1", len(got))
	}
}

func TestConvertedOpportunityIsImmutable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})

	cust := store.addCustomer(testCustomer())
	veh := store.addVehicle(testVehicle(&cust.ID))
	opp := seedScheduledCita(store, &cust.ID, &veh.ID)

	if _, err := svc.ReceptionAppointment(context.Background(), opp.ID, transport.ReceptionRequest{TipoServicio: "Servicio"}); err != nil {
		t.Fatalf("ReceptionAppointment: %v", err)
	}
	before, _ := store.GetByID(context.Background(), opp.ID)

	_, err := svc.Reschedule(context.Background(), opp.ID, transport.RescheduleRequest{FechaCita: "2025-07-01", HoraCita: "08:00"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("reschedule after conversion err = %v, want Conflict", err)
	}

	_, err = svc.Cancel(context.Background(), opp.ID, "ya no viene")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("cancel after conversion err = %v, want Conflict", err)
	}

	_, err = svc.CompleteCita(context.Background(), opp.ID, transport.CompleteCitaRequest{VehicleID: &veh.ID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("complete cita after conversion err = %v, want Conflict", err)
	}

	after, _ := store.GetByID(context.Background(), opp.ID)
	if after.Cita.FechaCita != before.Cita.FechaCita || after.Cita.HoraCita != before.Cita.HoraCita {
		t.Error("appointment fields changed despite conversion")
	}
	if after.Estado != domain.EstadoCompletado {
		t.Errorf("estado = %s, want completado untouched", after.Estado)
	}
}

func TestCompleteCita_RequiresAReference(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeBus{})
	cust := store.addCustomer(testCustomer())
	opp := seedScheduledCita(store, &cust.ID, nil)

	_, err := svc.CompleteCita(context.Background(), opp.ID, transport.CompleteCitaRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}
