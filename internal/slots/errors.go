package slots

import (
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

var (
	// ErrInvalidDuration длительность занятия должна быть положительной
	ErrInvalidDuration = fmt.Errorf("%w: lesson duration must be positive", model.ErrValidation)

	// ErrInvalidStep шаг перебора должен быть положительным и кратным минуте
	ErrInvalidStep = fmt.Errorf("%w: slot step must be a positive whole number of minutes", model.ErrValidation)

	// ErrInvalidTemplate некорректные рабочие часы в шаблоне
	ErrInvalidTemplate = fmt.Errorf("%w: invalid availability template", model.ErrValidation)

	// ErrForeignDate в списке занятых интервалов запись на другую дату
	ErrForeignDate = fmt.Errorf("%w: busy booking is not on the requested date", model.ErrValidation)
)
