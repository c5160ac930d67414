// Package plugins registro en compile-time de integraciones intercambiables
// (mensajería y pasarela de pagos). La variante activa se elige por nombre en
// la configuración; no hay carga dinámica de código.
package plugins

import (
	"fmt"

	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
)

// Registry asocia nombres a implementaciones por capability. Los nombres
// desconocidos fallan en el arranque, no en el primer uso.
type Registry struct {
	messengers map[string]provisioning.Messenger
	payments   map[string]provisioning.PaymentInitiator
}

// NewRegistry construye el registro vacío.
func NewRegistry() *Registry {
	return &Registry{
		messengers: make(map[string]provisioning.Messenger),
		payments:   make(map[string]provisioning.PaymentInitiator),
	}
}

// RegisterMessenger registra una implementación de la capability MESSAGING.
func (r *Registry) RegisterMessenger(name string, m provisioning.Messenger) {
	r.messengers[name] = m
}

// RegisterPayment registra una implementación de la capability PAYMENT.
func (r *Registry) RegisterPayment(name string, p provisioning.PaymentInitiator) {
	r.payments[name] = p
}

// Messenger resuelve la implementación de mensajería por nombre.
func (r *Registry) Messenger(name string) (provisioning.Messenger, error) {
	m, ok := r.messengers[name]
	if !ok {
		return nil, fmt.Errorf("plugin MESSAGING %q no registrado", name)
	}
	return m, nil
}

// Payment resuelve la pasarela de pagos por nombre.
func (r *Registry) Payment(name string) (provisioning.PaymentInitiator, error) {
	p, ok := r.payments[name]
	if !ok {
		return nil, fmt.Errorf("plugin PAYMENT %q no registrado", name)
	}
	return p, nil
}
