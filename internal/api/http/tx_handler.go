package http

import (
	"net/http"

	"agentforge-backend/internal/service"

	"github.com/gorilla/mux"
)

type TxHandler struct {
	txs service.TxService
}

func NewTxHandler(txs service.TxService) *TxHandler {
	return &TxHandler{txs: txs}
}

func (h *TxHandler) Get(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.txs.GetReceipt(mux.Vars(r)["hash"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

// Wait blocks until the transaction settles or the client gives up. Closing
// the connection abandons the wait; the write itself keeps running.
func (h *TxHandler) Wait(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.txs.WaitForReceipt(r.Context(), mux.Vars(r)["hash"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}
