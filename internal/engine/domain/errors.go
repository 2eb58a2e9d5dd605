package domain

import (
	"errors"
	"fmt"
)

// Erros de mercado e de conta retornados pelo motor de apostas.
// O handler HTTP traduz todos em 4xx; nenhum deles produz efeito
// colateral no banco.
var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMarketClosed         = errors.New("market closed for betting")
	ErrSelectionUnavailable = errors.New("selection not available")
	ErrOddsChanged          = errors.New("odds changed")
	ErrInsufficientFunds    = errors.New("insufficient available balance")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountRestricted    = errors.New("account is suspended, disabled, or read-only")
	ErrBetNotFound          = errors.New("bet not found")
)

// ValidationError é um erro de entrada recuperável (valor, contagem de
// pernas, campo ausente). A mensagem pode ir direto pro cliente.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf monta um ValidationError formatado.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsClientError diz se o erro deve virar 4xx sem stack trace.
func IsClientError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	switch {
	case errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrMarketClosed),
		errors.Is(err, ErrSelectionUnavailable),
		errors.Is(err, ErrOddsChanged),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrAccountRestricted),
		errors.Is(err, ErrBetNotFound):
		return true
	}
	return false
}
