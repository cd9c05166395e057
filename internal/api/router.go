package api

import (
	"net/http"

	"github.com/AlexZinkM/cosmic-wallet/internal/handler"
	"github.com/AlexZinkM/cosmic-wallet/internal/protocol"
	"github.com/AlexZinkM/cosmic-wallet/internal/wallet"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(svc *wallet.Service, pages *protocol.Handler) http.Handler {
	walletHandler := handler.NewWalletHandler(svc)
	clusterHandler := handler.NewClusterHandler(svc)
	rpcHandler := handler.NewRPCHandler(pages)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet lifecycle
	mux.HandleFunc("/wallet/create", walletHandler.Create)
	mux.HandleFunc("/wallet/restore", walletHandler.Restore)
	mux.HandleFunc("/wallet/unlock", walletHandler.Unlock)
	mux.HandleFunc("/wallet/lock", walletHandler.Lock)
	mux.HandleFunc("/wallet/forget", walletHandler.Forget)
	mux.HandleFunc("/wallet/password", walletHandler.ChangePassword)
	mux.HandleFunc("/wallet/mnemonic", walletHandler.Mnemonic)
	mux.HandleFunc("/wallet/backup", walletHandler.Backup)
	mux.HandleFunc("/wallet/backup/restore", walletHandler.RestoreBackup)

	// Accounts
	mux.HandleFunc("/wallet/accounts", walletHandler.Accounts)
	mux.HandleFunc("/wallet/accounts/select", walletHandler.SelectAccount)
	mux.HandleFunc("/wallet/accounts/rename", walletHandler.RenameAccount)
	mux.HandleFunc("/wallet/accounts/remove", walletHandler.RemoveAccount)
	mux.HandleFunc("/wallet/accounts/export", walletHandler.ExportAccount)

	// Balances and transfers
	mux.HandleFunc("/wallet/receive", walletHandler.Receive)
	mux.HandleFunc("/wallet/balance", walletHandler.GetBalance)
	mux.HandleFunc("/wallet/transfer", walletHandler.Transfer)
	mux.HandleFunc("/wallet/visibility", walletHandler.Visibility)

	// Clusters
	mux.HandleFunc("/cluster", clusterHandler.List)
	mux.HandleFunc("/cluster/select", clusterHandler.Select)
	mux.HandleFunc("/cluster/custom", clusterHandler.Custom)

	// Page requests
	mux.HandleFunc("/rpc", rpcHandler.Handle)
	mux.HandleFunc("/rpc/connections", rpcHandler.Connections)
	mux.HandleFunc("/rpc/disconnect", rpcHandler.Disconnect)

	return mux
}
