package pages

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/greenflash/greenflash/internal/model"
)

// Sidebar lists both ledgers' latest entries.
type Sidebar struct {
	Logs        []*model.Entry
	Maintenance []*model.Entry
}

func Landing(p *Page) templ.Component {
	return render("landing.html", struct{ *Page }{p})
}

func Home(p *Page, sidebar Sidebar) templ.Component {
	return render("home.html", struct {
		*Page
		Sidebar Sidebar
	}{p, sidebar})
}

func NotFound(p *Page) templ.Component {
	return render("not_found.html", struct{ *Page }{p})
}

// SignupForm is echoed back when signup fails.
type SignupForm struct {
	Username string
	Email    string
}

func Signup(p *Page, form SignupForm) templ.Component {
	return render("signup.html", struct {
		*Page
		Form SignupForm
	}{p, form})
}

func Login(p *Page, username, next string) templ.Component {
	return render("login.html", struct {
		*Page
		Username string
		Next     string
	}{p, username, next})
}

func Profile(p *Page, user *model.User, bookmarks int) templ.Component {
	return render("profile.html", struct {
		*Page
		Profile   *model.User
		Bookmarks int
	}{p, user, bookmarks})
}

// ProfileForm holds the editable profile fields.
type ProfileForm struct {
	Username string
	Email    string
	Bio      string
	ImageURL string
}

func ProfileEdit(p *Page, form ProfileForm) templ.Component {
	return render("profile_edit.html", struct {
		*Page
		Form ProfileForm
	}{p, form})
}

func ChangePassword(p *Page) templ.Component {
	return render("password.html", struct{ *Page }{p})
}

func DeleteAccount(p *Page) templ.Component {
	return render("account_delete.html", struct{ *Page }{p})
}

func Places(p *Page, places []*model.Place) templ.Component {
	return render("places.html", struct {
		*Page
		Places []*model.Place
	}{p, places})
}

// EntryForm holds the ledger form values as typed by the user.
type EntryForm struct {
	Title    string
	Location string
	Mileage  string
	Body     string
	Date     string
	ImageURL string
}

// FormFromEntry fills an EntryForm for editing.
func FormFromEntry(e *model.Entry) EntryForm {
	return EntryForm{
		Title:    e.Title,
		Location: e.Location,
		Body:     e.Body,
		Mileage:  formatMileage(e.Mileage),
		Date:     e.Date.Format("2006-01-02"),
		ImageURL: e.ImageURL,
	}
}

type ledgerView struct {
	*Page
	Kind    model.Kind
	Sidebar Sidebar
}

// LedgerForm renders the create form when id is 0 and the edit form otherwise.
func LedgerForm(p *Page, kind model.Kind, id int64, form EntryForm, locations []string, sidebar Sidebar) templ.Component {
	return render("ledger_form.html", struct {
		ledgerView
		ID        int64
		Form      EntryForm
		Locations []string
	}{ledgerView{p, kind, sidebar}, id, form, locations})
}

func LedgerDetail(p *Page, kind model.Kind, entry *model.Entry, body template.HTML, sidebar Sidebar) templ.Component {
	return render("ledger_detail.html", struct {
		ledgerView
		Entry *model.Entry
		Body  template.HTML
	}{ledgerView{p, kind, sidebar}, entry, body})
}

func LedgerList(p *Page, kind model.Kind, entries []*model.Entry, sidebar Sidebar) templ.Component {
	return render("ledger_list.html", struct {
		ledgerView
		Entries []*model.Entry
	}{ledgerView{p, kind, sidebar}, entries})
}
