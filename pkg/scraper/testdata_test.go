package scraper

import (
	"fmt"
	"strings"

	"github.com/umputun/kleinwatch/pkg/domain"
)

type fixture struct {
	id, title, price, date string
	noTitleLink            bool
}

// pageHTML renders a listing index page the way the site does, with breadcrumb header
func pageHTML(items ...fixture) string {
	var sb strings.Builder
	sb.WriteString(`<html><body>
<div class="breadcrump">
  <a class="breadcrump-link" itemprop="url" href="/" title="Kleinanzeigen Startseite">Startseite</a>
  <a class="breadcrump-link" itemprop="url" href="/s-haus-garten/c80">Haus &amp; Garten</a>
  <h1><span class="breadcrump-leaf">Wohnzimmer in Köln</span><span class="breadcrump-summary"> 1 - 25 von 300 Ergebnissen für Wohnzimmer in Köln - Nordrhein-Westfalen</span></h1>
</div>
<ul id="srchrslt-adtable">`)
	for _, it := range items {
		title := fmt.Sprintf(`<a class="ellipsis" href="/s-anzeige/item-%s/%s">%s</a>`, it.id, it.id, it.title)
		if it.noTitleLink {
			title = it.title
		}
		sb.WriteString(fmt.Sprintf(`
<li class="ad-listitem">
<article class="aditem" data-adid="%s" data-href="/s-anzeige/item-%s/%s">
  <div class="aditem-image"><a href="/s-anzeige/item-%s/%s"><img src="https://img.kleinanzeigen.de/api/v1/prod-ads/images/%s.jpg" alt=""/></a>
    <img data-src="https://cdn.example.com/tracker.gif"/></div>
  <div class="aditem-main">
    <div class="aditem-main--top">
      <div class="aditem-main--top--left"><i class="icon"></i> 50667 Köln Altstadt-Nord</div>
      <div class="aditem-main--top--right"><i class="icon"></i> %s</div>
    </div>
    <div class="aditem-main--middle">
      <h2 class="text-module-begin">%s</h2>
      <p class="aditem-main--middle--description">Gut erhalten, Abholung in Köln.</p>
      <div class="aditem-main--middle--price-shipping">
        <p class="aditem-main--middle--price-shipping--price">%s</p>
      </div>
    </div>
  </div>
</article>
</li>`, it.id, it.id, it.id, it.id, it.id, it.id, it.date, title, it.price))
	}
	sb.WriteString("</ul></body></html>")
	return sb.String()
}

// catalogStub resolves only the names used by the fixtures
type catalogStub struct{}

func (catalogStub) ResolveLocation(city, state string) domain.Location {
	if city == "Köln" {
		return domain.Location{City: "Köln", CityID: "945", State: "Nordrhein-Westfalen", StateID: "928"}
	}
	return domain.Location{City: city, State: state}
}

func (catalogStub) FindCategory(category, subcategory string) domain.Category {
	res := domain.Category{Category: category, Subcategory: subcategory}
	if category == "Haus & Garten" {
		res.CategoryID = "80"
	}
	if subcategory == "Wohnzimmer" {
		res.SubcategoryID = "88"
	}
	return res
}
