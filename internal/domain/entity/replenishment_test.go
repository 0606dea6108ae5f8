package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados de la solicitud de reposición:
// suggested → approved → requested → inTransit ⇄ partiallyReceived → received,
// con cancelación desde cualquier estado no terminal.
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newSuggestion(qty float64) *entity.ReplenishmentRequest {
	return &entity.ReplenishmentRequest{
		ID:                "repl-1",
		StockRecordID:     "rec-1",
		ItemID:            "ITEM-1",
		LocationID:        "LOC-1",
		Type:              entity.ReplenishmentAutomatic,
		Status:            entity.ReplenishmentSuggested,
		Priority:          entity.PriorityNormal,
		QuantitySuggested: decimal.NewFromFloat(qty),
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
}

func TestApprove_FijaCantidadSugerida(t *testing.T) {
	req := newSuggestion(50)
	require.NoError(t, req.Approve("user-1", nil, testNow))

	assert.Equal(t, entity.ReplenishmentApproved, req.Status)
	assert.Equal(t, "user-1", req.ApprovedBy)
	assert.True(t, req.QuantityRequested.Equal(decimal.NewFromInt(50)),
		"sin override, la cantidad aprobada es la sugerida")
}

func TestApprove_ConOverrideDeCantidad(t *testing.T) {
	req := newSuggestion(50)
	override := decimal.NewFromInt(75)
	require.NoError(t, req.Approve("user-1", &override, testNow))
	assert.True(t, req.QuantityRequested.Equal(decimal.NewFromInt(75)))
}

func TestApprove_OverrideNoPositivoEsInvalido(t *testing.T) {
	req := newSuggestion(50)
	override := decimal.Zero
	assert.ErrorIs(t, req.Approve("user-1", &override, testNow), domain.ErrInvalidInput)
}

func TestApprove_SoloDesdeSuggested(t *testing.T) {
	req := newSuggestion(50)
	require.NoError(t, req.Approve("user-1", nil, testNow))
	assert.ErrorIs(t, req.Approve("user-2", nil, testNow), domain.ErrInvalidStateTransition,
		"aprobar dos veces es una transición inválida")
}

func TestRequest_DesdeSuggestedDirecto(t *testing.T) {
	// Se permite emitir sin aprobar; la cantidad solicitada cae a la sugerida.
	req := newSuggestion(40)
	expected := testNow.AddDate(0, 0, 7)
	require.NoError(t, req.Request("SUP-1", expected, testNow))

	assert.Equal(t, entity.ReplenishmentRequested, req.Status)
	assert.Equal(t, "SUP-1", req.SupplierID)
	assert.True(t, req.QuantityRequested.Equal(decimal.NewFromInt(40)))
}

func TestMarkInTransit_SoloDesdeRequested(t *testing.T) {
	req := newSuggestion(40)
	assert.ErrorIs(t, req.MarkInTransit(testNow), domain.ErrInvalidStateTransition)

	require.NoError(t, req.Request("SUP-1", testNow.AddDate(0, 0, 7), testNow))
	require.NoError(t, req.MarkInTransit(testNow))
	assert.Equal(t, entity.ReplenishmentInTransit, req.Status)
}

func TestReceivePartial_AcumulaHastaCompletar(t *testing.T) {
	req := newSuggestion(100)
	require.NoError(t, req.Request("SUP-1", testNow.AddDate(0, 0, 7), testNow))
	require.NoError(t, req.MarkInTransit(testNow))

	require.NoError(t, req.ReceivePartial(decimal.NewFromInt(60), testNow))
	assert.Equal(t, entity.ReplenishmentPartiallyReceived, req.Status)
	assert.Nil(t, req.ActualDeliveryDate, "entrega parcial no fija fecha real")

	require.NoError(t, req.ReceivePartial(decimal.NewFromInt(40), testNow))
	assert.Equal(t, entity.ReplenishmentReceived, req.Status)
	require.NotNil(t, req.ActualDeliveryDate)
	assert.True(t, req.QuantityFulfilled.Equal(decimal.NewFromInt(100)))
}

func TestReceivePartial_CantidadNoPositivaEsInvalida(t *testing.T) {
	req := newSuggestion(100)
	require.NoError(t, req.Request("SUP-1", testNow.AddDate(0, 0, 7), testNow))
	require.NoError(t, req.MarkInTransit(testNow))
	assert.ErrorIs(t, req.ReceivePartial(decimal.Zero, testNow), domain.ErrInvalidInput)
}

func TestReceivePartial_EstadosInvalidos(t *testing.T) {
	req := newSuggestion(100)
	assert.ErrorIs(t, req.ReceivePartial(decimal.NewFromInt(10), testNow),
		domain.ErrInvalidStateTransition, "no se recibe una sugerencia sin emitir")
}

func TestCancel_DesdeNoTerminal(t *testing.T) {
	req := newSuggestion(100)
	require.NoError(t, req.Cancel("proveedor sin stock", testNow))
	assert.Equal(t, entity.ReplenishmentCancelled, req.Status)
	assert.Equal(t, "proveedor sin stock", req.CancelReason)
}

func TestCancel_TerminalEsInvalido(t *testing.T) {
	req := newSuggestion(100)
	require.NoError(t, req.Cancel("motivo", testNow))
	assert.ErrorIs(t, req.Cancel("otra vez", testNow), domain.ErrInvalidStateTransition)
}

func TestIsOverdue_SoloRequestedOInTransitConFechaVencida(t *testing.T) {
	req := newSuggestion(100)
	assert.False(t, req.IsOverdue(testNow), "una sugerencia nunca está vencida")

	require.NoError(t, req.Request("SUP-1", testNow.AddDate(0, 0, -1), testNow))
	assert.True(t, req.IsOverdue(testNow), "fecha esperada en el pasado estando requested")

	require.NoError(t, req.MarkInTransit(testNow))
	assert.True(t, req.IsOverdue(testNow))

	require.NoError(t, req.ReceivePartial(decimal.NewFromInt(100), testNow))
	assert.False(t, req.IsOverdue(testNow), "recibida deja de estar vencida")
}

func TestStatus_Terminalidad(t *testing.T) {
	assert.True(t, entity.ReplenishmentReceived.IsTerminal())
	assert.True(t, entity.ReplenishmentCancelled.IsTerminal())
	assert.True(t, entity.ReplenishmentPartiallyReceived.IsOpen(),
		"parcialmente recibida sigue abierta")
}
