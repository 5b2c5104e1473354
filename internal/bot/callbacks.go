package bot

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "intakebot/core/telegram"
	"intakebot/core/telegram/callbacks"
	tghelpers "intakebot/core/telegram/helpers"
	"intakebot/core/telegram/middleware"
	"intakebot/internal/i18n"
	"intakebot/internal/orders"
)

// Callback answer texts shown as toast notifications to the operator.
const (
	answerUpdated    = "Статус обновлён"
	answerAlreadySet = "Статус уже установлен"
	answerDeleted    = "Удалено"
	answerNotFound   = "Сообщение не найдено"
	answerEditFailed = "Ошибка при редактировании сообщения"
	answerForbidden  = "Недоступно"
)

func (a *App) registerCallbacks(reg *tg.Registry) {
	guard := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.OperatorOnly(middleware.OperatorOptions{
			ChatID: a.cfg.Intake.OperatorChatID,
			OnReject: func(c tele.Context) error {
				return c.Respond(&tele.CallbackResponse{Text: answerForbidden})
			},
		}, h)
	}

	_ = reg.RegisterCallback(cbOrderInProgress, guard(a.orderAction(orders.ActionInProgress)))
	_ = reg.RegisterCallback(cbOrderDone, guard(a.orderAction(orders.ActionDone)))
	_ = reg.RegisterCallback(cbOrderDelete, guard(a.orderAction(orders.ActionDelete)))
	_ = reg.RegisterCallback(cbIntakeLang, a.chooseLanguage)
}

// orderAction maps a status button press to a lifecycle transition and
// answers the callback with the outcome.
func (a *App) orderAction(action orders.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		orderID := strings.TrimSpace(callbacks.CallbackPayload(c))
		if orderID == "" {
			return c.Respond(&tele.CallbackResponse{Text: answerNotFound})
		}

		outcome, err := a.orders.Apply(tghelpers.BuildContext(c), orderID, action)
		switch {
		case errors.Is(err, orders.ErrCardNotFound), errors.Is(err, orders.ErrNotFound):
			return c.Respond(&tele.CallbackResponse{Text: answerNotFound})
		case err != nil:
			return c.Respond(&tele.CallbackResponse{Text: answerEditFailed})
		}

		switch outcome {
		case orders.OutcomeDeleted:
			return c.Respond(&tele.CallbackResponse{Text: answerDeleted})
		case orders.OutcomeAlreadySet:
			return c.Respond(&tele.CallbackResponse{Text: answerAlreadySet})
		}
		return c.Respond(&tele.CallbackResponse{Text: answerUpdated})
	}
}

// chooseLanguage starts a fresh intake form in the picked locale.
func (a *App) chooseLanguage(c tele.Context) error {
	loc := i18n.Parse(callbacks.CallbackPayload(c))
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return a.flow.Begin(c, loc)
}
