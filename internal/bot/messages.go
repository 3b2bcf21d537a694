package bot

// User-facing texts. The bot speaks English; commands mirror the
// command menu registered at startup.
const (
	msgWelcome = `Hi! I remember places you may want to visit later. Available commands:
/add – save a place;
/list – show saved places (last 10 only);
/reset – delete all saved places.
You can also just send me your location and I will check whether any saved place is nearby.`

	msgAskAddress = "Send me the name of the place to remember."
	msgAskMap     = "Now point the place on the map."
	msgAskPhoto   = "You can attach a photo of the place, but it is optional."

	msgNotAnAddress   = "I need a text name for the place."
	msgAddressTooLong = "That name is too long, 32 characters at most."
	msgNotALocation   = "That is not a point on the map."
	msgNotAPhoto      = "That is not a photo."

	msgConfirmF = "Save %q?"

	msgSaved       = "New place saved!"
	msgSaveFailed  = "Could not save the place, please try again."
	msgStoreFailed = "Could not reach the place storage, please try again later."
	msgCancelled   = "Adding a new place cancelled."
	msgSkipPhoto   = "Okay, no photo then."

	msgEmptyList   = "You have no saved places yet."
	msgListHeaderF = "Your saved places:\n%s\nSend /x where x is the place number to see details."
	msgResetDone   = "All saved places deleted."

	msgNoneNearby = "No saved places within 500 meters."
	msgOneNearby  = "Found a place within 500 meters!"
	msgManyNearby = "Found several places within 500 meters! Here they are:"
)

// Callback keys for the dialogue inline buttons.
const (
	CallbackCancel  = "add_cancel"
	CallbackSkip    = "add_skip"
	CallbackConfirm = "add_confirm"
)

var (
	buttonCancel  = Button{Text: "Cancel", Unique: CallbackCancel}
	buttonSkip    = Button{Text: "Skip", Unique: CallbackSkip}
	buttonConfirm = Button{Text: "Save", Unique: CallbackConfirm}
)
