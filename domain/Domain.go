// Package domain builds the immutable schema of a task domain: the
// intent and slot vocabularies that fix the dialogue action space for
// an entire training run.
package domain

// Ontology supplies the slot vocabularies of a task domain. It is
// consumed exactly once, when the Domain is constructed.
type Ontology interface {
	// InformableSlots returns the slots a user may constrain
	InformableSlots() []string

	// RequestableSlots returns the slots a user may request
	RequestableSlots() []string

	// SystemRequestableSlots returns the slots the system may request
	SystemRequestableSlots() []string
}

// DSTC2 dialogue act vocabularies. Inform and request are excluded:
// they are modelled together with their slot arguments.
var (
	dstc2ActsSys = []string{"offer", "canthelp", "affirm", "deny", "ack",
		"bye", "reqmore", "welcomemsg", "expl-conf", "select", "repeat",
		"confirm-domain", "confirm"}

	dstc2ActsUsr = []string{"affirm", "negate", "deny", "ack", "thankyou",
		"bye", "reqmore", "hello", "expl-conf", "repeat", "reqalts",
		"restart", "confirm"}
)

// parametrized intents that carry slot arguments
var actsParams = []string{"inform", "request"}

// Domain is the immutable schema of a single task domain. A Domain is
// created once from an Ontology at policy construction time and is
// read-only thereafter: all accessors return copies.
type Domain struct {
	actsParams             []string
	sysActs                []string
	usrActs                []string
	systemRequestableSlots []string
	requestableSlots       []string
	nActions               int
}

// New builds a Domain from an ontology. The derived action-space size
// counts the no-argument system acts, the system-requestable slots
// (system requests) and the requestable slots (system informs).
func New(ont Ontology) *Domain {
	sysReq := copyStrings(ont.SystemRequestableSlots())
	req := copyStrings(ont.RequestableSlots())

	nActions := len(dstc2ActsSys) + len(sysReq) + len(req)

	return &Domain{
		actsParams:             copyStrings(actsParams),
		sysActs:                copyStrings(dstc2ActsSys),
		usrActs:                copyStrings(dstc2ActsUsr),
		systemRequestableSlots: sysReq,
		requestableSlots:       req,
		nActions:               nActions,
	}
}

// ActsParams returns the intents that take slot parameters.
func (d *Domain) ActsParams() []string {
	return copyStrings(d.actsParams)
}

// SystemActs returns the system acts that take no parameters.
func (d *Domain) SystemActs() []string {
	return copyStrings(d.sysActs)
}

// UserActs returns the user acts that take no parameters.
func (d *Domain) UserActs() []string {
	return copyStrings(d.usrActs)
}

// SystemRequestableSlots returns the slots the system may request.
func (d *Domain) SystemRequestableSlots() []string {
	return copyStrings(d.systemRequestableSlots)
}

// RequestableSlots returns the slots the user may request.
func (d *Domain) RequestableSlots() []string {
	return copyStrings(d.requestableSlots)
}

// NActions returns the total size of the system action space.
func (d *Domain) NActions() int {
	return d.nActions
}

// IsParametrized returns whether acts of the given intent carry slot
// parameters in this domain.
func (d *Domain) IsParametrized(intent string) bool {
	for _, p := range d.actsParams {
		if p == intent {
			return true
		}
	}
	return false
}

// Strings returns every vocabulary string in the schema. The state
// encoder's vocabulary is fit over these.
func (d *Domain) Strings() []string {
	out := make([]string, 0, len(d.actsParams)+len(d.sysActs)+
		len(d.usrActs)+len(d.systemRequestableSlots)+len(d.requestableSlots))
	out = append(out, d.actsParams...)
	out = append(out, d.sysActs...)
	out = append(out, d.usrActs...)
	out = append(out, d.systemRequestableSlots...)
	out = append(out, d.requestableSlots...)
	return out
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
