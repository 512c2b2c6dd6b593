// Package resolver turns identity references (existing id, new payload, or
// nothing) into concrete customer and vehicle rows. All inserts run on the
// caller's transaction; the resolver owns no transaction boundary.
package resolver

import (
	"context"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	opprepo "taller_backend/internal/opportunities/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/apperr"
	"taller_backend/platform/phone"
)

// NewCustomer is the inline-creation payload for a customer.
type NewCustomer struct {
	Nombre   string
	Telefono string
	Whatsapp *string
	Email    *string
}

// NewVehicle is the inline-creation payload for a vehicle. The owner is
// always the customer resolved in the same operation.
type NewVehicle struct {
	VIN         *string
	Marca       string
	Modelo      string
	Anio        int
	PlacaActual string
	Kilometraje *int64
}

// CustomerRef selects one of the three resolution paths. Both fields nil
// means "none": fall back to whatever identity the caller already has.
type CustomerRef struct {
	ID  *uuid.UUID
	New *NewCustomer
}

// VehicleRef selects one of the three resolution paths for a vehicle.
type VehicleRef struct {
	ID  *uuid.UUID
	New *NewVehicle
}

// ResolveCustomer returns a concrete customer for the given reference,
// creating a row when a new payload is supplied. fallback is the identity
// already attached to the calling opportunity, if any. The second return
// reports whether a row was created.
func ResolveCustomer(ctx context.Context, tx opprepo.Tx, ref CustomerRef, fallback *uuid.UUID) (custrepo.Customer, bool, error) {
	switch {
	case ref.ID != nil:
		c, err := tx.GetCustomer(ctx, *ref.ID)
		return c, false, err

	case ref.New != nil:
		if fields := missingCustomerFields(ref.New); len(fields) > 0 {
			return custrepo.Customer{}, false, apperr.ValidationFields("new customer payload is incomplete", fields)
		}
		c, err := tx.CreateCustomer(ctx, custrepo.CreateParams{
			Nombre:   ref.New.Nombre,
			Telefono: phone.NormalizeE164(ref.New.Telefono),
			Whatsapp: ref.New.Whatsapp,
			Email:    ref.New.Email,
		})
		return c, err == nil, err

	case fallback != nil:
		c, err := tx.GetCustomer(ctx, *fallback)
		return c, false, err

	default:
		return custrepo.Customer{}, false, apperr.Validation("no customer reference or payload was provided")
	}
}

// ResolveVehicle returns a concrete vehicle for the given reference. An
// inline-created vehicle is always owned by the already-resolved customer.
func ResolveVehicle(ctx context.Context, tx opprepo.Tx, ref VehicleRef, fallback *uuid.UUID, owner custrepo.Customer) (vehrepo.Vehicle, bool, error) {
	switch {
	case ref.ID != nil:
		v, err := tx.GetVehicle(ctx, *ref.ID)
		return v, false, err

	case ref.New != nil:
		if fields := missingVehicleFields(ref.New); len(fields) > 0 {
			return vehrepo.Vehicle{}, false, apperr.ValidationFields("new vehicle payload is incomplete", fields)
		}
		ownerID := owner.ID
		v, err := tx.CreateVehicle(ctx, vehrepo.CreateParams{
			VIN:         ref.New.VIN,
			Marca:       ref.New.Marca,
			Modelo:      ref.New.Modelo,
			Anio:        ref.New.Anio,
			PlacaActual: ref.New.PlacaActual,
			CustomerID:  &ownerID,
			Kilometraje: ref.New.Kilometraje,
		})
		return v, err == nil, err

	case fallback != nil:
		v, err := tx.GetVehicle(ctx, *fallback)
		return v, false, err

	default:
		return vehrepo.Vehicle{}, false, apperr.Validation("no vehicle reference or payload was provided")
	}
}

func missingCustomerFields(p *NewCustomer) []string {
	var fields []string
	if p.Nombre == "" {
		fields = append(fields, "nombre")
	}
	if p.Telefono == "" {
		fields = append(fields, "telefono")
	}
	return fields
}

func missingVehicleFields(p *NewVehicle) []string {
	var fields []string
	if p.Marca == "" {
		fields = append(fields, "marca")
	}
	if p.Modelo == "" {
		fields = append(fields, "modelo")
	}
	if p.Anio == 0 {
		fields = append(fields, "anio")
	}
	if p.PlacaActual == "" {
		fields = append(fields, "placa_actual")
	}
	return fields
}
