package linkedin

// In-page scripts. Each is a function expression evaluated with arguments.

// SetInputValueJS clears an input and assigns a new value: (selector, value)
const SetInputValueJS = `(selector, value) => {
	const input = document.querySelector(selector);
	if (!input) return false;
	input.value = '';
	input.value = value;
	return true;
}`

// ClickSelectorJS clicks the first match of selector inside the page: (selector)
const ClickSelectorJS = `(selector) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	el.click();
	return true;
}`

// HasGeoIDJS holds once the search redirect has added a geoId parameter
const HasGeoIDJS = `() => new URLSearchParams(document.location.search).has('geoId')`

// ClickEasyApplyJS clicks the match of selector whose text mentions easy
// apply, ignoring other buttons that share the selector: (selector)
const ClickEasyApplyJS = `(selector) => {
	const buttons = Array.from(document.querySelectorAll(selector));
	const easyApply = buttons.find((b) => b.textContent && b.textContent.trim().toLowerCase().includes('easy apply'));
	if (!easyApply) return false;
	easyApply.click();
	return true;
}`

// NoFormErrorJS holds while the modal shows no inline validation error
const NoFormErrorJS = `() => !document.querySelector("` + "div[id*='error'] div[class*='error']" + `")`

// SetFieldJS assigns a value to the first match of selector and fires the
// input and change events the form listens to: (selector, value)
const SetFieldJS = `(selector, value) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// SetFieldByIDJS is SetFieldJS keyed by element id: (id, value)
const SetFieldByIDJS = `(id, value) => {
	const el = document.getElementById(id);
	if (!el) return false;
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// ClickByIDJS clicks the element with the given id: (id)
const ClickByIDJS = `(id) => {
	const el = document.getElementById(id);
	if (!el) return false;
	el.click();
	return true;
}`

// UncheckJS clears a checked checkbox matching selector: (selector)
const UncheckJS = `(selector) => {
	const el = document.querySelector(selector);
	if (el && el.checked) el.click();
	return true;
}`
