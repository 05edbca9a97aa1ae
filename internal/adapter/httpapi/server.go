package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/discovery"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/simulation"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/wallet"
)

// Server exposes the wallet, simulation and discovery use cases as a
// REST JSON API
type Server struct {
	WalletService     *wallet.WalletService
	SimulationService *simulation.SimulationService
	DiscoveryService  *discovery.DiscoveryService
}

// NewServer creates a new HTTP server instance
func NewServer(
	walletService *wallet.WalletService,
	simulationService *simulation.SimulationService,
	discoveryService *discovery.DiscoveryService,
) *Server {
	return &Server{
		WalletService:     walletService,
		SimulationService: simulationService,
		DiscoveryService:  discoveryService,
	}
}

// Handler builds the route table. Every /api/v1 route sits behind the
// bearer-token middleware; /health does not.
func (s *Server) Handler(apiToken string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/wallets", s.handleCreateWallet)
	api.HandleFunc("GET /api/v1/wallets/{walletId}", s.handleGetWallet)
	api.HandleFunc("POST /api/v1/wallets/{walletId}/assets", s.handleAddAsset)
	api.HandleFunc("PUT /api/v1/wallets/{walletId}/assets/{assetId}", s.handleUpdateAsset)
	api.HandleFunc("POST /api/v1/simulations/portfolio", s.handleSimulatePortfolio)
	api.HandleFunc("GET /api/v1/assets/symbols", s.handleAvailableSymbols)
	api.HandleFunc("GET /api/v1/assets", s.handleSearchAssets)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", AuthMiddleware(apiToken, api))
	mux.HandleFunc("GET /health", handleHealth)

	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createWalletRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.WalletService.CreateWallet(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWalletResponse(created))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuid.Parse(r.PathValue("walletId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	found, err := s.WalletService.GetWallet(r.Context(), walletID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWalletResponse(found))
}

type addAssetRequest struct {
	Symbol   string           `json:"symbol"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuid.Parse(r.PathValue("walletId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	var req addAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := s.WalletService.AddAsset(r.Context(), walletID, req.Symbol, req.Quantity, req.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssetResponse(asset))
}

type updateAssetRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuid.Parse(r.PathValue("walletId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}
	assetID, err := uuid.Parse(r.PathValue("assetId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset ID")
		return
	}

	var req updateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := s.WalletService.UpdateAsset(r.Context(), walletID, assetID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

type simulateAssetInput struct {
	Symbol   string           `json:"symbol"`
	Quantity decimal.Decimal  `json:"quantity"`
	Value    *decimal.Decimal `json:"value,omitempty"`
}

type simulateRequest struct {
	Date   string               `json:"date"`
	Assets []simulateAssetInput `json:"assets"`
}

type simulationResponse struct {
	TotalValue       decimal.Decimal `json:"totalValue"`
	BestAsset        string          `json:"bestAsset"`
	BestPerformance  decimal.Decimal `json:"bestPerformance"`
	WorstAsset       string          `json:"worstAsset"`
	WorstPerformance decimal.Decimal `json:"worstPerformance"`
}

func (s *Server) handleSimulatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.ParseInLocation(time.DateOnly, req.Date, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	inputs := make([]simulation.AssetInput, len(req.Assets))
	for i, asset := range req.Assets {
		inputs[i] = simulation.AssetInput{
			Symbol:   asset.Symbol,
			Quantity: asset.Quantity,
			Value:    asset.Value,
		}
	}

	result, err := s.SimulationService.Simulate(r.Context(), date, inputs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, simulationResponse{
		TotalValue:       result.TotalValue,
		BestAsset:        result.BestAsset,
		BestPerformance:  result.BestPerformance,
		WorstAsset:       result.WorstAsset,
		WorstPerformance: result.WorstPerformance,
	})
}

func (s *Server) handleAvailableSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.DiscoveryService.AvailableSymbols(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"symbols": symbols})
}

func (s *Server) handleSearchAssets(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	assets, err := s.DiscoveryService.Search(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

type assetResponse struct {
	ID           uuid.UUID       `json:"id"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Value        decimal.Decimal `json:"value"`
}

type walletResponse struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	Assets     []assetResponse `json:"assets"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

func toAssetResponse(asset *domain.Asset) assetResponse {
	return assetResponse{
		ID:           asset.ID,
		Symbol:       asset.Symbol,
		Quantity:     asset.Quantity,
		CurrentPrice: asset.CurrentPrice,
		Value:        asset.Value(),
	}
}

func toWalletResponse(w *domain.Wallet) walletResponse {
	assets := make([]assetResponse, len(w.Assets))
	for i, asset := range w.Assets {
		assets[i] = toAssetResponse(asset)
	}
	return walletResponse{
		ID:         w.ID,
		Email:      w.Email,
		Assets:     assets,
		TotalValue: w.TotalValue(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
