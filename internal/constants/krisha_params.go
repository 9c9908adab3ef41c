package constants

import "time"

const (
	// CDN, на котором лежат полноразмерные фотографии объявлений
	DefaultPhotoCDNBase = "https://alaps-photos-kr.kcdn.kz/webp/"

	DefaultFetchRetries    = 3
	DefaultFetchRetryDelay = 3000 * time.Millisecond
	DefaultFetchTimeout    = 5000 * time.Millisecond
	DefaultAdPause         = 1000 * time.Millisecond
	DefaultDetailTimeout   = 60 * time.Second
	DefaultPopupTimeout    = 5 * time.Second
)

// Параметры строки запроса выдачи
const (
	ParamHasPhoto   = "das[_sys.hasphoto]=1"
	ParamFromOwner  = "das[who]=1"
	ParamRooms      = "das[live.rooms]"
	ParamRentPeriod = "rent-period-switch"
	ParamPage       = "page"
)

// Селекторы страницы выдачи
const (
	SelectorCardTitle   = "a.a-card__title"
	SelectorCardDescr   = ".a-card__descr"
	SelectorPaidIcon    = ".paid-icon"
	SelectorPaidIconTag = "span"
)

// Селекторы страницы объявления
const (
	SelectorTutorialClose = ".tutorial__close.notes-tutorial__close"
	SelectorShowPhones    = ".show-phones"
	SelectorPhone         = ".offer__contacts-phones p"

	SelectorTitle       = "h1"
	SelectorPrice       = ".offer__price"
	SelectorLocation    = ".offer__location"
	SelectorFloor       = `div.offer__info-item[data-name="flat.floor"] .offer__advert-short-info`
	SelectorArea        = `div.offer__info-item[data-name="live.square"] .offer__advert-short-info`
	SelectorCondition   = `div.offer__info-item[data-name="flat.renovation"] .offer__advert-short-info, div.offer__info-item[data-name="flat.rent_renovation"] .offer__advert-short-info`
	SelectorAuthor      = ".owners__name"
	SelectorDescription = ".js-description"
	SelectorViewsText   = ".a-nb-views-text.is-updated"
	SelectorGalleryImg  = ".offer__content .gallery__container > div > a > picture > img"

	DataNameFurniture     = "flat.furniture"
	DataNameFacilities    = "flat.facilities"
	DataNameToilet        = "separated_toilet"
	DataNameBathroom      = "bathroom"
	DataNameRentalOptions = "who_match"
)
