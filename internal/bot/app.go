// Package bot wires the shop's Telegram surface: browsing and buying for
// everyone, catalog management dialogs for the admin.
package bot

import (
	coreconfig "github.com/m3rciful/shopbot/core/config"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	tgcommands "github.com/m3rciful/shopbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/middleware"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/payments"
	"github.com/m3rciful/shopbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// App aggregates the services behind the bot handlers.
type App struct {
	cfg      *coreconfig.Config
	store    *catalog.Store
	sessions *session.Manager
	payments *payments.Manager
}

// New builds the application around an opened catalog store.
func New(cfg *coreconfig.Config, store *catalog.Store) *App {
	gateway := payments.NewBlockonomics(cfg.Payments)
	return &App{
		cfg:      cfg,
		store:    store,
		sessions: session.NewManager(),
		payments: payments.NewManager(store, gateway, payments.NewAssets("")),
	}
}

func (a *App) isAdmin(c tele.Context) bool {
	return middleware.IsAdmin(c, a.cfg.Telegram.AdminID)
}

// InProgress reports whether the user is inside an admin dialog.
// Together with HandleText it feeds the free-text router.
func (a *App) InProgress(userID int64) bool {
	s := a.sessions.Peek(userID)
	return s != nil && s.Step.InFlow()
}

// TelegramRunOptions assembles the full bot wiring for the core runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", tgcommands.Command{
		Handler:     a.handleStart,
		Description: "Browse the shop",
	})
	reg.RegisterCommand("/confirm", tgcommands.Command{
		Handler:     a.handleConfirm,
		Description: "Check your payment and receive your file",
	})
	reg.RegisterCommand("/cancel", tgcommands.Command{
		Handler:     a.handleCancel,
		Description: "Abort the current dialog",
	})
	reg.RegisterCommand("/admin", tgcommands.Command{
		Handler:     a.handleAdmin,
		Description: "Open the admin panel",
		AdminOnly:   true,
	})

	_ = reg.RegisterCallback("nav", a.cbNav)
	_ = reg.RegisterCallback("cat", a.cbCategory)
	_ = reg.RegisterCallback("item", a.cbItem)
	_ = reg.RegisterCallback("buy", a.cbBuy)
	_ = reg.RegisterCallback("admin", a.cbAdmin)

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, unknownTextReply)
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is for the shop admin only.")
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}
