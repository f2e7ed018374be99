// Package i18n holds the user-facing messages of the session layer. Romanian is the
// default language, English the fallback for anything else.
package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message.
type Key string

const (
	MissingCredentials    Key = "missing_credentials"
	InvalidEmail          Key = "invalid_email"
	PasswordTooShort      Key = "password_too_short" // arg: minimum length
	MissingRegistration   Key = "missing_registration"
	LockedOut             Key = "locked_out"          // arg: minutes
	InvalidCredentials    Key = "invalid_credentials" // arg: attempts left
	LoginUnexpected       Key = "login_unexpected"
	DuplicateEmail        Key = "duplicate_email"
	RegisterFailed        Key = "register_failed"
	RegisterSuccess       Key = "register_success"
	ResetEmailSent        Key = "reset_email_sent"
	ResetFailed           Key = "reset_failed"
	PasswordUpdated       Key = "password_updated"
	PasswordUpdateFailed  Key = "password_update_failed"
	LoggedOut             Key = "logged_out"
	SessionRefreshed      Key = "session_refreshed"
	SessionExpired        Key = "session_expired"
	AccessDenied          Key = "access_denied"
	ServiceUnavailable    Key = "service_unavailable"
	NotAuthenticated      Key = "not_authenticated"
	PermissionNotGranted  Key = "permission_not_granted" // arg: capability
	PermissionGranted     Key = "permission_granted"     // arg: capability
	WelcomeUser           Key = "welcome_user"           // arg: name
	LoginRequiredRedirect Key = "login_required_redirect"
)

// DefaultLanguage is used when no language is configured.
var DefaultLanguage = language.Romanian

var supported = []language.Tag{language.Romanian, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[Key]string{
	language.Romanian: {
		MissingCredentials:    "Email-ul și parola sunt obligatorii",
		InvalidEmail:          "Adresa de email nu este validă",
		PasswordTooShort:      "Parola trebuie să aibă cel puțin %d caractere",
		MissingRegistration:   "Toate câmpurile obligatorii trebuie completate",
		LoginUnexpected:       "A apărut o eroare la autentificare. Încercați din nou",
		DuplicateEmail:        "Există deja un cont cu această adresă de email",
		RegisterFailed:        "Înregistrarea a eșuat. Încercați din nou",
		RegisterSuccess:       "Cont creat. Verificați email-ul pentru confirmare",
		ResetEmailSent:        "Am trimis instrucțiunile de resetare pe email",
		ResetFailed:           "Nu am putut trimite email-ul de resetare",
		PasswordUpdated:       "Parola a fost actualizată",
		PasswordUpdateFailed:  "Nu am putut actualiza parola",
		LoggedOut:             "V-ați deconectat",
		SessionRefreshed:      "Sesiunea a fost reînnoită",
		SessionExpired:        "Sesiunea a expirat. Autentificați-vă din nou",
		AccessDenied:          "Nu aveți permisiunea de a accesa această pagină",
		ServiceUnavailable:    "Serviciul de autentificare nu este disponibil",
		NotAuthenticated:      "Nu sunteți autentificat",
		PermissionNotGranted:  "Permisiunea %s nu este acordată",
		PermissionGranted:     "Permisiunea %s este acordată",
		WelcomeUser:           "Bine ați venit, %s",
		LoginRequiredRedirect: "Autentificați-vă pentru a continua",
	},
	language.English: {
		MissingCredentials:    "Email and password are required",
		InvalidEmail:          "The email address is not valid",
		PasswordTooShort:      "Password must be at least %d characters long",
		MissingRegistration:   "All required fields must be filled in",
		LoginUnexpected:       "Something went wrong while signing in. Please try again",
		DuplicateEmail:        "An account with this email already exists",
		RegisterFailed:        "Registration failed. Please try again",
		RegisterSuccess:       "Account created. Check your email to confirm it",
		ResetEmailSent:        "Password reset instructions have been emailed",
		ResetFailed:           "The password reset email could not be sent",
		PasswordUpdated:       "Your password has been updated",
		PasswordUpdateFailed:  "Your password could not be updated",
		LoggedOut:             "You have been signed out",
		SessionRefreshed:      "Session refreshed",
		SessionExpired:        "Your session has expired. Please sign in again",
		AccessDenied:          "You do not have permission to access this page",
		ServiceUnavailable:    "The sign-in service is unavailable",
		NotAuthenticated:      "You are not signed in",
		PermissionNotGranted:  "Permission %s is not granted",
		PermissionGranted:     "Permission %s is granted",
		WelcomeUser:           "Welcome, %s",
		LoginRequiredRedirect: "Please sign in to continue",
	},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			_ = b.SetString(tag, string(key), msg)
		}
	}

	_ = b.Set(language.Romanian, string(LockedOut), plural.Selectf(1, "%d",
		"=1", "Prea multe încercări eșuate. Încercați din nou peste %d minut",
		"other", "Prea multe încercări eșuate. Încercați din nou peste %d minute",
	))
	_ = b.Set(language.English, string(LockedOut), plural.Selectf(1, "%d",
		"=1", "Too many failed attempts. Try again in %d minute",
		"other", "Too many failed attempts. Try again in %d minutes",
	))
	_ = b.Set(language.Romanian, string(InvalidCredentials), plural.Selectf(1, "%d",
		"=1", "Email sau parolă incorectă. Mai aveți %d încercare",
		"other", "Email sau parolă incorectă. Mai aveți %d încercări",
	))
	_ = b.Set(language.English, string(InvalidCredentials), plural.Selectf(1, "%d",
		"=1", "Incorrect email or password. %d attempt left",
		"other", "Incorrect email or password. %d attempts left",
	))
	return b
}

var builder = buildCatalog()

// Translator renders messages in one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for lang, a BCP 47 tag such as "ro" or "en-GB".
// Unsupported or malformed tags fall back to Romanian.
func New(lang string) *Translator {
	tag := DefaultLanguage
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, confidence := matcher.Match(parsed)
			if confidence != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

// Language returns the tag messages are rendered in.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// T renders key with args.
func (t *Translator) T(key Key, args ...any) string {
	return t.printer.Sprintf(string(key), args...)
}
