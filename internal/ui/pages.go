package ui

import (
	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/files"
)

const (
	pageMain              = "main"
	pageLocalFiles        = "local-files"
	pageUdiskFiles        = "udisk-files"
	pageCloudFiles        = "cloud-files"
	pagePrintNoCloudSave  = "print-no_cloud_save"
	pagePrintSaveInCloud  = "print-save_in_cloud"
	pageDebug             = "debug"
	pageNotFoundTitle     = "Page not found"
	printerNotFoundTitle  = "Printer not found"
	printerSelectTitle    = "Select a printer"
	noPrintersPlaceholder = "No Anycubic printers registered in Home Assistant"
)

// pageTab is one entry of the page bar.
type pageTab struct {
	page  string
	title string
}

var pageTabs = []pageTab{
	{pageMain, "Main"},
	{pageLocalFiles, files.Local.Title},
	{pageUdiskFiles, files.Udisk.Title},
	{pageCloudFiles, files.Cloud.Title},
	{pagePrintNoCloudSave, "Print"},
	{pagePrintSaveInCloud, "Print + Save"},
	{pageDebug, "Debug"},
}

// printServices maps print pages to the integration service they call.
var printServices = map[string]string{
	pagePrintNoCloudSave: action.ServicePrintNoCloudSave,
	pagePrintSaveInCloud: action.ServicePrintSaveInCloud,
}

// pageIndex returns the tab index of page, or -1 for unknown pages.
func pageIndex(page string) int {
	for i, tab := range pageTabs {
		if tab.page == page {
			return i
		}
	}
	return -1
}

// nextPage returns the page delta tabs away from page, wrapping. Unknown
// pages continue from the first tab.
func nextPage(page string, delta int) string {
	i := pageIndex(page)
	if i < 0 {
		return pageTabs[0].page
	}
	n := len(pageTabs)
	return pageTabs[((i+delta)%n+n)%n].page
}

// pageTitle returns the display title of page.
func pageTitle(page string) string {
	if i := pageIndex(page); i >= 0 {
		return pageTabs[i].title
	}
	return pageNotFoundTitle
}
