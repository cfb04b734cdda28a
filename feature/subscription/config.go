package subscription

// Options parameterize the SUBSCRIBE requests built by an Emitter.
type Options struct {
	// ServerAddress is the Contact of every SUBSCRIBE and the watcher of
	// reg-event subscriptions.
	ServerAddress string
	// OutboundProxy routes every SUBSCRIBE when set.
	OutboundProxy string
	// SharedLineExpires is used for intents without a duration.
	SharedLineExpires int
	// RegInfoExpires is the expiry of reg-event subscriptions.
	RegInfoExpires int
	// RefreshUsername is the user part of the From URI of self-refresh requests.
	RefreshUsername string
	// RefreshExpires is the expiry of self-refresh requests. Zero fetches state only.
	RefreshExpires int
}

const (
	defaultSharedLineExpires = 180
	defaultRegInfoExpires    = 180
	defaultRefreshUsername   = "presence"
)

func (o Options) withDefaults() Options {
	if o.SharedLineExpires <= 0 {
		o.SharedLineExpires = defaultSharedLineExpires
	}
	if o.RegInfoExpires <= 0 {
		o.RegInfoExpires = defaultRegInfoExpires
	}
	if o.RefreshUsername == "" {
		o.RefreshUsername = defaultRefreshUsername
	}
	if o.RefreshExpires < 0 {
		o.RefreshExpires = 0
	}
	return o
}
