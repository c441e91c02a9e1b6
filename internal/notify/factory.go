package notify

import (
	"go.uber.org/zap"
)

// Config учётные данные внешних сервисов. Пустые значения отключают канал
type Config struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string

	TelegramToken string
}

// Factory создаёт каналы по конфигурации при каждом вызове Channels,
// глобальных клиентов нет
type Factory struct {
	cfg    Config
	logger *zap.Logger
}

func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *Factory) Channels() []Channel {
	var channels []Channel

	if f.cfg.SendGridAPIKey != "" {
		channels = append(channels, NewEmailChannel(f.cfg.SendGridAPIKey, f.cfg.FromName, f.cfg.FromEmail))
	} else {
		channels = append(channels, NewConsoleChannel(f.logger))
	}

	if f.cfg.TwilioAccountSID != "" && f.cfg.TwilioAuthToken != "" && f.cfg.TwilioFromPhone != "" {
		channels = append(channels, NewSMSChannel(f.cfg.TwilioAccountSID, f.cfg.TwilioAuthToken, f.cfg.TwilioFromPhone))
	}

	if f.cfg.TelegramToken != "" {
		ch, err := NewTelegramChannelFromToken(f.cfg.TelegramToken)
		if err != nil {
			f.logger.Error("Failed to create telegram channel", zap.Error(err))
		} else {
			channels = append(channels, ch)
		}
	}

	return channels
}
