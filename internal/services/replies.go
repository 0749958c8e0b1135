package services

import "fmt"

// Recipient-facing reply strings. German is the default audience language;
// everything else falls back to English.

func replyReactionUp(language string) string {
	if language == "de" {
		return "🙏 Danke für dein Feedback! Ich freue mich, dass dir die Nachricht gefällt. 💜"
	}
	return "🙏 Thank you for your feedback! I'm glad you liked the message. 💜"
}

func replyReactionDown(language string) string {
	if language == "de" {
		return "🙏 Danke für dein Feedback! Ich werde die Nachricht für morgen anpassen. 💜"
	}
	return "🙏 Thank you for your feedback! I'll adjust tomorrow's message. 💜"
}

func replyHelp(language string) string {
	if language == "de" {
		return `📱 *Verfügbare Befehle:*

👍/👎 Reagiere auf Nachrichten mit Emojis

*Repeat [Zeit]* - Heutige Nachricht wiederholen
Beispiel: ` + "`Repeat 14:30`" + ` oder ` + "`Repeat 2:30pm`" + `

*Alternative* - Andere Ölempfehlung für heute anfordern

*Info [Ölname]* - Detaillierte Informationen zu einem Öl
Beispiel: ` + "`Info Lavendel`" + `

*Hilfe* - Diese Übersicht anzeigen

Mit Liebe,
Soul Aligned Oils 💜`
	}
	return `📱 *Available Commands:*

👍/👎 React to messages with emojis

*Repeat [TIME]* - Repeat today's message
Example: ` + "`Repeat 14:30`" + ` or ` + "`Repeat 2:30pm`" + `

*Alternative* - Request alternative oil recommendation for today

*Info [OIL NAME]* - Get detailed information about an oil
Example: ` + "`Info Lavender`" + `

*Help* - Show this overview

With love,
Soul Aligned Oils 💜`
}

func replyInvalidTime(language string) string {
	if language == "de" {
		return "❌ Bitte gib die Zeit im Format HH:MM an, z.B. 'Repeat 14:30'"
	}
	return "❌ Please provide time in HH:MM format, e.g. 'Repeat 14:30'"
}

func replyPastTime(language string) string {
	if language == "de" {
		return "❌ Diese Zeit ist bereits vorbei. Bitte wähle eine Zeit in der Zukunft."
	}
	return "❌ This time has already passed. Please choose a future time."
}

func replyNoMessageYet(language string) string {
	if language == "de" {
		return "❌ Ich habe heute noch keine Nachricht für dich gesendet. Bitte warte auf die Morgennachricht."
	}
	return "❌ I haven't sent you a message today yet. Please wait for the morning message."
}

func replyRepeatScheduled(language string, fireTime string) string {
	if language == "de" {
		return fmt.Sprintf("✅ Ich schicke dir die heutige Nachricht nochmal um %s Uhr 🔄", fireTime)
	}
	return fmt.Sprintf("✅ I'll send you today's message again at %s 🔄", fireTime)
}

func replyAlternative(language string, text string) string {
	if language == "de" {
		return "🌿 *Alternative Empfehlung für heute:*\n\n" + text
	}
	return "🌿 *Alternative Recommendation for Today:*\n\n" + text
}

func replyAlternativeFailed(language string) string {
	if language == "de" {
		return "❌ Fehler beim Generieren der Alternativempfehlung. Bitte versuche es später erneut."
	}
	return "❌ Error generating alternative recommendation. Please try again later."
}

func replyOilNameMissing(language string) string {
	if language == "de" {
		return "❌ Bitte gib einen Ölnamen an, z.B. 'Info Lavendel'"
	}
	return "❌ Please provide an oil name, e.g. 'Info Lavender'"
}

func replyUnknownOil(language string, query string) string {
	if language == "de" {
		return fmt.Sprintf("❌ Das Öl '%s' gehört nicht zu deiner heutigen Empfehlung. Schreib 'Hilfe' für verfügbare Befehle.", query)
	}
	return fmt.Sprintf("❌ The oil '%s' is not part of today's recommendation. Write 'Help' for available commands.", query)
}
