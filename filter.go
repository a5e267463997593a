package web2pdf

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Fixed filter heuristics. These are deliberate policy, not user
// configuration: ad blocking and consent-banner removal are best effort
// and tuning them per capture would only create false expectations.
var (
	// adSelectors match elements whose id/class naming marks them as ads.
	adSelectors = []string{
		`[id^="ad-"]`, `[id*="-ad-"]`, `[id^="ads-"]`, `[id*="advert"]`,
		`[class^="ad-"]`, `[class*=" ad-"]`, `[class^="ads-"]`, `[class*="advert"]`,
		`[class*="banner"]`, `[id*="banner"]`,
		`[class*="sponsored"]`, `[id*="sponsored"]`,
	}

	// adIframeHosts flag iframes loaded from known ad networks.
	adIframeHosts = []string{
		"doubleclick.net", "googlesyndication.com", "adnxs.com",
		"amazon-adsystem.com", "taboola.com", "outbrain.com",
	}

	// consentTokens identify cookie/consent/privacy UI; an element is only
	// removed when its layout is fixed/absolute AND one of these tokens
	// appears in its id, class, or visible text (the dual condition keeps
	// legitimate fixed-position content alive).
	consentTokens = []string{"cookie", "consent", "gdpr", "privacy"}

	// headerSelectors find navigation chrome to tag for the dual render.
	headerSelectors = []string{
		"header", "nav",
		`[class*="header"]`, `[id*="header"]`,
		`[class*="navbar"]`, `[id*="navbar"]`,
		`[class*="menu"]`, `[class*="nav"]`,
	}
)

// headerAttr marks tagged header candidates in the DOM. The header-hidden
// surface forces display:none on every element carrying it.
const headerAttr = "data-web2pdf-header"

// Image downscale ceiling: images wider than a third of the viewport are
// shrunk proportionally to that width.
const imageWidthDivisor = 3

// Header candidates must sit within this many pixels of the viewport top.
const headerTopOffsetPx = 100

// filterReport summarises what the in-page filter did on one surface.
type filterReport struct {
	AdsRemoved       int
	PopupsRemoved    int
	ImagesDownscaled int
	HeadersTagged    int
	Warnings         []string
}

// buildFilterOptions serialises the filter parameters for the page script.
func buildFilterOptions(viewportWidth int, showHeader bool) (string, error) {
	opts := "{}"
	var err error
	if opts, err = sjson.Set(opts, "viewportWidth", viewportWidth); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "showHeader", showHeader); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "maxImageRatio", 1.0/imageWidthDivisor); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "headerTopOffset", headerTopOffsetPx); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "headerAttr", headerAttr); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "adSelectors", adSelectors); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "adIframeHosts", adIframeHosts); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "consentTokens", consentTokens); err != nil {
		return "", err
	}
	if opts, err = sjson.Set(opts, "headerSelectors", headerSelectors); err != nil {
		return "", err
	}
	return opts, nil
}

// parseFilterReport decodes the JSON the page script returns.
func parseFilterReport(raw string) (filterReport, error) {
	if !gjson.Valid(raw) {
		return filterReport{}, fmt.Errorf("invalid filter report: %q", raw)
	}
	res := gjson.Parse(raw)
	rep := filterReport{
		AdsRemoved:       int(res.Get("ads").Int()),
		PopupsRemoved:    int(res.Get("popups").Int()),
		ImagesDownscaled: int(res.Get("images").Int()),
		HeadersTagged:    int(res.Get("headers").Int()),
	}
	for _, w := range res.Get("warnings").Array() {
		rep.Warnings = append(rep.Warnings, w.String())
	}
	return rep, nil
}

// filterScript runs inside the page. Every pass wraps its mutations in a
// try/catch that records a warning and moves on: blocking is best effort
// and must never abort the capture. Re-running the script is a no-op:
// removed elements are gone, downscaled images carry data-orig-width and
// are skipped, tagged headers are skipped.
const filterScript = `(optsJSON) => {
	const opts = JSON.parse(optsJSON);
	const report = { ads: 0, popups: 0, images: 0, headers: 0, warnings: [] };

	const attempt = (label, fn) => {
		try { fn(); } catch (e) {
			report.warnings.push(label + ': ' + (e && e.message ? e.message : String(e)));
		}
	};

	attempt('ad removal', () => {
		for (const sel of opts.adSelectors) {
			for (const el of document.querySelectorAll(sel)) {
				el.remove();
				report.ads++;
			}
		}
		for (const frame of document.querySelectorAll('iframe[src]')) {
			if (opts.adIframeHosts.some(h => frame.src.includes(h))) {
				frame.remove();
				report.ads++;
			}
		}
	});

	attempt('popup removal', () => {
		for (const el of Array.from(document.querySelectorAll('body *'))) {
			if (!el.isConnected) continue;
			const pos = getComputedStyle(el).position;
			if (pos !== 'fixed' && pos !== 'absolute') continue;
			const probe = (el.id + ' ' + el.className + ' ' +
				(el.innerText || '').slice(0, 300)).toLowerCase();
			if (opts.consentTokens.some(t => probe.includes(t))) {
				el.remove();
				report.popups++;
			}
		}
	});

	attempt('image downscale', () => {
		const maxWidth = opts.viewportWidth * opts.maxImageRatio;
		for (const img of document.querySelectorAll('img')) {
			if (img.hasAttribute('data-orig-width')) continue;
			const w = img.naturalWidth || img.width;
			const h = img.naturalHeight || img.height;
			if (!w || w <= maxWidth) continue;
			// Keep the original dimensions recoverable for downstream use.
			img.setAttribute('data-orig-width', String(w));
			img.setAttribute('data-orig-height', String(h));
			img.width = Math.round(maxWidth);
			img.height = Math.round(h * (maxWidth / w));
			report.images++;
		}
	});

	attempt('header tagging', () => {
		for (const sel of opts.headerSelectors) {
			for (const el of document.querySelectorAll(sel)) {
				if (el.hasAttribute(opts.headerAttr)) continue;
				const top = el.getBoundingClientRect().top + window.scrollY;
				if (top > opts.headerTopOffset) continue;
				el.setAttribute(opts.headerAttr, '1');
				report.headers++;
			}
		}
		if (!opts.showHeader) {
			for (const el of document.querySelectorAll('[' + opts.headerAttr + ']')) {
				el.style.display = 'none';
			}
		}
	});

	return JSON.stringify(report);
}`

// imageSettleScript waits for every <img> on the page to finish loading
// (or fail) before the render, so lazy-loaded images are not captured
// half-blank.
const imageSettleScript = `() => {
	return new Promise((resolve) => {
		const images = document.querySelectorAll('img');
		let loaded = 0;
		if (images.length === 0) {
			resolve();
			return;
		}
		const done = () => {
			loaded++;
			if (loaded === images.length) resolve();
		};
		images.forEach(img => {
			if (img.complete) {
				done();
			} else {
				img.addEventListener('load', done);
				img.addEventListener('error', done);
			}
		});
	});
}`
