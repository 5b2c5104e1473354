// Package bot assembles the intake application: the customer intake
// flow, the order lifecycle service, and their Telegram wiring.
package bot

import (
	"context"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coretelegram "intakebot/core/telegram"
	"intakebot/core/telegram/commands"
	tghelpers "intakebot/core/telegram/helpers"
	"intakebot/core/telegram/router"
	"intakebot/core/telegram/state"
	"intakebot/internal/config"
	"intakebot/internal/i18n"
	"intakebot/internal/intake"
	"intakebot/internal/media"
	"intakebot/internal/orders"
	"intakebot/internal/orders/postgres"
)

const welcomeBanner = "Добро пожаловать в <b>Chicago Handyman Services</b>! 👷‍♂️🔧"
const languagePrompt = "🌐 Выберите язык / Choose your language:"

// App owns the application components for the lifetime of the process.
type App struct {
	cfg      *config.Config
	channel  *OperatorChannel
	orders   *orders.Service
	flow     *intake.Flow
	states   state.Manager
	registry *coretelegram.Registry
	fb       fallbacks
}

// New builds the application on top of an initialized database handle.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	channel := NewOperatorChannel(cfg.Intake.OperatorChatID)
	svc := orders.NewService(postgres.NewRepo(db), channel)

	window := cfg.MediaWindow()
	if window <= 0 {
		window = media.DefaultWindow
	}

	states := state.NewMemoryManager()
	flow := intake.NewFlow(states, media.NewAggregator(window), svc)
	flow.Register()

	a := &App{
		cfg:     cfg,
		channel: channel,
		orders:  svc,
		flow:    flow,
		states:  states,
		fb:      fallbacks{locale: i18n.Parse(cfg.Intake.DefaultLocale)},
	}
	a.registry = a.buildRegistry()
	return a, nil
}

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.startCommand,
		Description: "Начать оформление заявки",
	})
	reg.SetTextFallback(a.fb.UnknownText())
	reg.SetCallbackNotFound(a.fb.UnknownCallback())
	a.registerCallbacks(reg)
	return reg
}

// startCommand greets the user and offers the language picker; the
// form itself starts once a language is chosen.
func (a *App) startCommand(c tele.Context) error {
	if err := tghelpers.SendHTML(c, welcomeBanner); err != nil {
		return err
	}
	return tghelpers.SendText(c, languagePrompt, &tele.SendOptions{ReplyMarkup: LanguageKeyboard()})
}

// TelegramRunOptions exposes the bot composition to the shared runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.MessageRoutes(a.states, a.registry, router.MessageOptions{
		UnknownText:  a.fb.UnknownText(),
		UnknownMedia: a.fb.UnknownMedia(),
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: a.fb.UnknownCallback(),
	}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.channel.Bind(rt.Bot)
			return nil
		},
	}, nil
}
