package apply

// Page selectors for the job view and the quick-apply modal
const (
	selApplyError     = "div.jobs-details-top-card__apply-error"
	selFullWidthSpan  = "span.full-width"
	selSeeMore        = `footer button[aria-label="Click to see more description"]`
	selDescription    = ".jobs-description-content"
	selHeading        = "h2"
	selProfileLink    = `a[href*="linkedin.com/in/"]`
	selApplyButton    = "button.jobs-apply-button"
	selProgress       = `div[aria-label*="Your job application progress"]`
	selContainer      = `div[class="ph5"]`
	selContainerAlt   = "div.ph4"
	selSection        = ":scope > div > div"
	selFileInput      = `input[type="file"]`
	selPrimaryButton  = "button.artdeco-button--primary"
	selDismiss        = ".artdeco-modal__dismiss"
	selConfirmDiscard = ".artdeco-modal__confirm-dialog-btn"
)

// Section selectors used by the field classifiers
const (
	selLabel          = "label"
	selDatePicker     = ".artdeco-datepicker__input"
	selDateInput      = `input[name="artdeco-date"]`
	selFormElement    = ".fb-dash-form-element"
	selRadio          = ".fb-form-element__checkbox"
	selRadioLabelAttr = "data-test-text-selectable-option__input"
	selSelect         = "select"
	selEntityList     = "[data-test-text-entity-list-form-select]"
	selInput          = "input"
	selTextarea       = "textarea"
)

// Banner and button texts
const (
	bannerClosed    = "No longer accepting applications"
	bannerSubmitted = "Application submitted"
	hiringTeam      = "Meet the hiring team"
	easyApply       = "Easy Apply"

	actionNext     = "next"
	actionReview   = "review"
	actionSubmit   = "submit application"
	actionContinue = "continue applying"
)

// premiumPath marks the upsell page the portal sometimes redirects job views to
const premiumPath = "linkedin.com/premium"
