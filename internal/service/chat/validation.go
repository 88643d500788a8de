package chat

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatrelay/internal/config"
	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

func validateTurnRequest(req *chatSvc.TurnRequest) error {
	if req == nil {
		return errors.New("request is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required,
			validation.By(notBlank),
			validation.RuneLength(1, config.MaxMessageLength),
		),
		validation.Field(&req.ConversationKey,
			validation.By(func(interface{}) error {
				return validation.Validate(req.Key(), validation.Length(0, config.MaxConversationKeyLength))
			}),
		),
	)
}

func validateTranscriptFilter(filter *chat.TranscriptFilter, maxLimit int) error {
	return validation.ValidateStruct(filter,
		validation.Field(&filter.Role,
			validation.In(chat.RoleUser, chat.RoleAssistant, chat.RoleTool),
		),
		validation.Field(&filter.SessionKey,
			validation.Length(0, config.MaxConversationKeyLength),
		),
		validation.Field(&filter.Limit,
			validation.Min(0),
			validation.Max(maxLimit),
		),
		validation.Field(&filter.Offset,
			validation.Min(0),
		),
		validation.Field(&filter.Until,
			validation.By(func(interface{}) error {
				if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
					return errors.New("must not be before since")
				}
				return nil
			}),
		),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
