package respond

// copySet holds the guest-facing strings for one language.
type copySet struct {
	askOrderItems        string
	orderDraft           string // %s: item list
	orderDraftHint       string
	orderSubmitted       string
	queuedNote           string // %s: department label
	orderInPreparation   string
	escalationAck        string
	reservationConfirmed string // date, time, party size
	reservationPending   string // date, time, party size
	askReservationInfo   string // %s: missing field labels
	fieldLabels          map[string]string
	apology              string
}

var copyTables = map[string]copySet{
	"de": {
		askOrderItems:        "Gerne! Was möchten Sie bestellen?",
		orderDraft:           "Auf Ihrer Bestellung: %s",
		orderDraftHint:       "Sagen Sie einfach Bescheid, wenn das alles ist.",
		orderSubmitted:       "Vielen Dank! Ihre Bestellung ist eingegangen:",
		queuedNote:           "Hinweis: %s ist gerade geschlossen, Ihre Bestellung wird nach Öffnung bearbeitet.",
		orderInPreparation:   "Gute Nachrichten! Ihre Bestellung wird gerade zubereitet.",
		escalationAck:        "Ich habe das Team informiert. Es meldet sich gleich jemand bei Ihnen.",
		reservationConfirmed: "Ihre Reservierung am %s um %s für %d Personen ist bestätigt. Wir freuen uns auf Sie!",
		reservationPending:   "Ihre Reservierungsanfrage am %s um %s für %d Personen ist eingegangen. Wir bestätigen sie in Kürze.",
		askReservationInfo:   "Gerne! Dafür brauche ich noch: %s.",
		fieldLabels: map[string]string{
			"date":       "das Datum",
			"time":       "die Uhrzeit",
			"party_size": "die Personenzahl",
			"guest_name": "den Namen für die Reservierung",
		},
		apology: "Entschuldigung, da ist etwas schiefgelaufen. Bitte versuchen Sie es gleich noch einmal.",
	},
	"it": {
		askOrderItems:        "Volentieri! Cosa desidera ordinare?",
		orderDraft:           "Il suo ordine: %s",
		orderDraftHint:       "Mi dica quando è tutto.",
		orderSubmitted:       "Grazie! Il suo ordine è stato ricevuto:",
		queuedNote:           "Nota: %s è chiuso al momento, l'ordine sarà preparato alla riapertura.",
		orderInPreparation:   "Buone notizie! Il suo ordine è in preparazione.",
		escalationAck:        "Ho informato il team. Qualcuno la contatterà a breve.",
		reservationConfirmed: "La sua prenotazione per il %s alle %s per %d persone è confermata. La aspettiamo!",
		reservationPending:   "La sua richiesta di prenotazione per il %s alle %s per %d persone è stata ricevuta. La confermeremo a breve.",
		askReservationInfo:   "Volentieri! Mi serve ancora: %s.",
		fieldLabels: map[string]string{
			"date":       "la data",
			"time":       "l'orario",
			"party_size": "il numero di persone",
			"guest_name": "il nome per la prenotazione",
		},
		apology: "Ci scusi, qualcosa è andato storto. Riprovi tra un attimo.",
	},
	"en": {
		askOrderItems:        "Of course! What would you like to order?",
		orderDraft:           "On your order: %s",
		orderDraftHint:       "Just let me know when that's everything.",
		orderSubmitted:       "Thank you! Your order has been received:",
		queuedNote:           "Note: %s is currently closed, your order will be handled once it reopens.",
		orderInPreparation:   "Good news! Your order is being prepared.",
		escalationAck:        "I've informed the team. Someone will get back to you shortly.",
		reservationConfirmed: "Your reservation on %s at %s for %d guests is confirmed. We look forward to seeing you!",
		reservationPending:   "Your reservation request for %s at %s for %d guests has been received. We'll confirm it shortly.",
		askReservationInfo:   "Happy to help! I still need: %s.",
		fieldLabels: map[string]string{
			"date":       "the date",
			"time":       "the time",
			"party_size": "the number of guests",
			"guest_name": "the name for the reservation",
		},
		apology: "Sorry, something went wrong. Please try again in a moment.",
	},
}

// copyFor returns the copy table for a language, falling back to English.
func copyFor(lang string) copySet {
	if c, ok := copyTables[lang]; ok {
		return c
	}
	return copyTables["en"]
}
