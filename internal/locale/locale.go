// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package locale holds the fixed user-facing texts of the client.
//
// Texts are keyed by their English form and looked up in an x/text catalog,
// so adding a language is a matter of adding its translations here.
package locale

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text is the key.
const (
	ReplyFallback   = "Sorry, I couldn't generate a response."
	DailyLimit      = "Daily limit exceeded. You can send more messages tomorrow."
	ErrorTryAgain   = "Error: %s. Please try again."
	WelcomeTitle    = "Welcome to AI Chat"
	WelcomeHint     = "Start a conversation by typing a message below."
	Loading         = "Loading..."
	Typing          = "AI is typing..."
	InputHint       = "Type your message... (Enter to send, Alt+Enter for newline)"
	LimitReached    = "Daily limit reached"
	QuotaStatus     = "%d/%d messages used (%d left)"
	LoginTitle      = "Sign in"
	RegisterTitle   = "Create account"
	EmailLabel      = "Email"
	PasswordLabel   = "Password"
	LoginHelp       = "Enter: submit • Tab: next field • Ctrl+R: switch sign in/register • Ctrl+C: quit"
	ChatHelp        = "Ctrl+L: logout • Ctrl+C: quit"
	SigningIn       = "Signing in..."
	LoggedOut       = "Logged out."
	NotLoggedIn     = "Not logged in. Run 'parley login' first."
	SessionRejected = "Your session has expired. Please sign in again."
)

var (
	once sync.Once
	cat  *catalog.Builder
)

// Supported lists the languages with translations.
var Supported = []language.Tag{language.English, language.Spanish}

func build() {
	cat = catalog.NewBuilder(catalog.Fallback(language.English))

	// ReplyFallback and ErrorTryAgain are fixed English texts in every language
	es := map[string]string{
		DailyLimit:      "Límite diario superado. Podrás enviar más mensajes mañana.",
		WelcomeTitle:    "Bienvenido a AI Chat",
		WelcomeHint:     "Empieza una conversación escribiendo un mensaje abajo.",
		Loading:         "Cargando...",
		Typing:          "La IA está escribiendo...",
		InputHint:       "Escribe tu mensaje... (Enter para enviar, Alt+Enter para nueva línea)",
		LimitReached:    "Límite diario alcanzado",
		QuotaStatus:     "%d/%d mensajes usados (quedan %d)",
		LoginTitle:      "Iniciar sesión",
		RegisterTitle:   "Crear cuenta",
		EmailLabel:      "Correo",
		PasswordLabel:   "Contraseña",
		LoginHelp:       "Enter: enviar • Tab: siguiente campo • Ctrl+R: cambiar inicio/registro • Ctrl+C: salir",
		ChatHelp:        "Ctrl+L: cerrar sesión • Ctrl+C: salir",
		SigningIn:       "Iniciando sesión...",
		LoggedOut:       "Sesión cerrada.",
		NotLoggedIn:     "No has iniciado sesión. Ejecuta 'parley login' primero.",
		SessionRejected: "Tu sesión ha caducado. Vuelve a iniciar sesión.",
	}
	for key, text := range es {
		_ = cat.SetString(language.Spanish, key, text)
	}
}

// Printer formats localized texts for one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a printer for the given BCP 47 language name. Unknown or
// unsupported languages fall back to English.
func New(lang string) *Printer {
	once.Do(build)

	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		matcher := language.NewMatcher(Supported)
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = Supported[idx]
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Tag returns the resolved language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// T returns the translation of key, formatted with args.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
